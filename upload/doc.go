// Package upload sends retrieved backup files to the custody service and
// decides whether each upload was accepted.
//
// Every upload is a single multipart/form-data POST to
// <scheme>://<hostname>/api/upload with two parts: "backup" carrying the
// file and "metadata" carrying the cached envelope. Files must be regular
// and strictly between 0 and MaxSize bytes; anything else is rejected
// locally before a connection is made. Verify maps the response to a
// Verdict.
package upload
