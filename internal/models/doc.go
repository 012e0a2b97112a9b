// Package models defines the domain types shared by the API client, the draft store and the UI.
//
//   - [Track] : a catalog track flattened from the Web API's nested track object
//   - [Draft] : the user's playlist under construction, unique by track id
//
// The core never mutates a [Draft]; saving receives only its name and [Draft.URIs].
package models
