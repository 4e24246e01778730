// Package recommend produces hairstyle recommendations for a user photo.
//
// Providers wrap one vendor each. Chain tries the configured providers in
// order and falls back to MockProvider, which serves the static catalog, so
// a recommendation request always gets an answer.
package recommend
