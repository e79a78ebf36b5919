// Package http implements the JSON and streaming endpoints of the file
// server on top of gin.
//
// Every /api route except /api/login sits behind the session middleware.
// File system errors map onto statuses in one place (statusFor): forbidden,
// missing, wrong-kind and invalid input are 400, an occupied destination is
// 409, an unsatisfiable range is 416 and an unavailable drive enumerator is
// 503. Anything else is a 500 with a generic body; the cause is attached to
// the gin context and logged by middleware.ErrorLogger.
//
// Downloads and previews are written in chunks of the service chunk size.
// A client that goes away mid-stream is logged at info level only.
package http
