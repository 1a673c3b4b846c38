package main

// General API documentation for swaggo. Run `swag init -g cmd/servingd/docs.go`
// to regenerate the docs package.
//
// @title           servingd API
// @version         1.0
// @description     Request admission and protocol translation in front of an OpenAI-compatible inference engine.
//
// @contact.name   servingd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
