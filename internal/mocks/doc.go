// Package mocks provides centralized mock implementations for testing.
//
// Each mock exposes function fields for custom behavior plus default return
// values, so handler and service tests can script collaborators without
// defining inline fakes:
//
//	verifier := &mocks.MockTokenVerifier{
//	    Claims: &auth.Claims{UserID: "firebase-uid"},
//	}
//
// When adding a new mock to this package, name the file after the interface
// being mocked and assert the interface is satisfied with a blank variable.
package mocks
