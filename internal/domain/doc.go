// Package domain contains the core business entities of the service: generation
// tasks and their lifecycle rules, hairstyles, user preferences and the static
// hairstyle catalog used when no AI vendor is available. It is independent of
// any specific infrastructure or delivery mechanism.
package domain
