// Package gemini adapts Google's Gemini API to the recommend.Provider and
// generation.Generator interfaces.
//
// A single genai client serves both adapters. The Recommender sends the
// user's photo and preferences to a text model and parses the JSON answer;
// the ImageGenerator sends the photo to an image-capable model and returns
// the inline image bytes it produces.
//
// Both adapters retry transient API failures with exponential backoff and
// jitter. Safety blocks and malformed answers are permanent and returned
// immediately.
package gemini
