// Package main is the entry point for licensor.
//
//	@title						Licensor - Checkout and License Provisioning
//	@version					1.0
//	@description				Sells subscriptions through a hosted checkout, provisions licenses and dashboard logins, and serves entitlements.
//
//	@contact.name				AiroSofts Support
//	@contact.url				https://www.airosofts.com/contact
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token returned by POST /login (format: "Bearer {token}")
package main

func main() {
	Execute()
}
