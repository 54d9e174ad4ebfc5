package http

// VerifyRequestSignature exposes the private verifier for tests
var VerifyRequestSignature = verifyRequestSignature
