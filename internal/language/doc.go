// Package language normalizes the language preferences users type into
// YouTube caption language codes.
//
// Codes are canonicalized with golang.org/x/text so "EN", "en_us" and
// "english" all resolve to the tag YouTube uses ("en", "en-US"). Canonical
// replacements such as iw→he are deliberately not applied because YouTube
// still publishes the legacy codes.
package language
