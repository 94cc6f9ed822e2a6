// Package docs registers the licensor OpenAPI document with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/subscribe": {
            "get": {
                "description": "Creates a hosted checkout for the plan and redirects to it",
                "tags": ["Checkout"],
                "summary": "Start a subscription checkout",
                "parameters": [
                    {"type": "string", "description": "Plan id", "name": "planId", "in": "query", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to hosted checkout"},
                    "400": {"description": "Unknown plan", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Payment provider error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/success": {
            "get": {
                "description": "Provisions the customer, subscription, license and login for a paid checkout",
                "tags": ["Checkout"],
                "summary": "Complete a checkout",
                "parameters": [
                    {"type": "string", "description": "Checkout session id", "name": "session_id", "in": "query", "required": true}
                ],
                "responses": {
                    "302": {"description": "Redirect to the thank-you page"},
                    "400": {"description": "Incomplete checkout data", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Provisioning failed", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/cancel": {
            "get": {
                "tags": ["Checkout"],
                "summary": "Abandon a checkout",
                "responses": {"302": {"description": "Redirect to the marketing site"}}
            }
        },
        "/customers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Account"],
                "summary": "Create a billing portal session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.PortalResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "No customer", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Log in to the dashboard",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.LoginResponse"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/http.LoginResponse"}}
                }
            }
        },
        "/api/change-password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Change the dashboard password",
                "parameters": [
                    {"description": "Passwords", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.ChangePasswordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.MessageResponse"}},
                    "400": {"description": "Current password incorrect or new password rejected", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/user-details": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Get the customer profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Profile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "No customer", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/user-subscriptions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "List subscriptions with quota usage",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entitlement.SubscriptionSummary"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "No subscriptions", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/api/available-softwares": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Entitlements"],
                "summary": "List downloadable software with license keys",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/entitlement.SoftwareBundle"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "No software", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/webhooks/stripe": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["Webhooks"],
                "summary": "Receive payment provider events",
                "parameters": [
                    {"type": "string", "description": "Provider signature", "name": "Stripe-Signature", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "Accepted"},
                    "400": {"description": "Invalid signature", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {"200": {"description": "status: ok"}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "status: ok"},
                    "503": {"description": "status: unhealthy"}
                }
            }
        }
    },
    "definitions": {
        "app.Profile": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "address": {"type": "object", "properties": {"country": {"type": "string"}}}
            }
        },
        "entitlement.SubscriptionSummary": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "logo": {"type": "string"},
                "plan": {"type": "string"},
                "start_date": {"type": "string"},
                "next_billing_date": {"type": "string"},
                "status": {"type": "string"},
                "auto_renewal": {"type": "boolean"},
                "limit": {"type": "integer"},
                "limit_used": {"type": "integer"}
            }
        },
        "entitlement.SoftwareBundle": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "software": {"type": "object"},
                "licenses": {"type": "array", "items": {"type": "object"}}
            }
        },
        "http.ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "currentPassword": {"type": "string"},
                "newPassword": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "not found"}}
        },
        "http.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "http.LoginResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "token": {"type": "string"},
                "redirectUrl": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "http.PortalResponse": {
            "type": "object",
            "properties": {"url": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Dashboard token, format: Bearer {token}",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Licensor - Checkout and License Provisioning",
	Description:      "Sells subscriptions through a hosted checkout, provisions licenses and dashboard logins, and serves entitlements.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
