package main

// General API documentation for swaggo; `swag init -g cmd/aardd/docs.go -o internal/docs`
// regenerates the registered document.
//
// @title           aardd API
// @version         1.0
// @description     Local dictionary lookup daemon: lookups, dictionaries, bookmarks and entry content.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
