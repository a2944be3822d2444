// Package docs registers the OpenAPI document served at /swagger. Regenerate
// with `swag init -g cmd/tourbook/main.go -o docs` after changing handler
// annotations.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness and database reachability",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/reservations/{id}/payment/authorize": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Start a card preauthorization",
                "parameters": [
                    {"type": "string", "description": "Reservation ID", "name": "id", "in": "path", "required": true},
                    {"description": "Shopper language", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/handlers.StartAuthorizationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/paymentgateway.RedirectPayload"}},
                    "404": {"description": "Reservation not found"},
                    "409": {"description": "Reservation is not pending"}
                }
            }
        },
        "/reservations/{id}/payment/confirm": {
            "post": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Confirm a preauthorized payment",
                "parameters": [
                    {"type": "string", "description": "Reservation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/usecases.PaymentStateResult"}},
                    "402": {"description": "Declined by the gateway"},
                    "409": {"description": "Reservation is not preauthorized"},
                    "502": {"description": "Gateway unavailable"}
                }
            }
        },
        "/reservations/{id}/payment/cancel": {
            "post": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Cancel a preauthorized payment",
                "parameters": [
                    {"type": "string", "description": "Reservation ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/usecases.PaymentStateResult"}},
                    "402": {"description": "Declined by the gateway"},
                    "409": {"description": "Reservation is not preauthorized"},
                    "502": {"description": "Gateway unavailable"}
                }
            }
        },
        "/payments/notification": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded", "application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Receive an asynchronous gateway notification",
                "responses": {
                    "200": {"description": "Applied, duplicate or ignored", "schema": {"$ref": "#/definitions/usecases.HandleNotificationResult"}},
                    "400": {"description": "Signature or integrity check failed"},
                    "404": {"description": "Unknown order reference"},
                    "409": {"description": "Same notification is being processed"},
                    "500": {"description": "Storage failure, gateway should retry"}
                }
            }
        },
        "/admin/flagged-notifications": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["review"],
                "summary": "List notifications flagged for review",
                "parameters": [
                    {"type": "integer", "description": "Maximum entries, default 50", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/usecases.FlaggedNotificationView"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.StartAuthorizationRequest": {
            "type": "object",
            "properties": {
                "language": {"type": "string", "maxLength": 35}
            }
        },
        "paymentgateway.RedirectPayload": {
            "type": "object",
            "properties": {
                "form_url": {"type": "string"},
                "Ds_SignatureVersion": {"type": "string"},
                "Ds_MerchantParameters": {"type": "string"},
                "Ds_Signature": {"type": "string"},
                "order_reference": {"type": "string"}
            }
        },
        "usecases.PaymentStateResult": {
            "type": "object",
            "properties": {
                "reservation_id": {"type": "string"},
                "payment_status": {"type": "string"},
                "order_reference": {"type": "string"},
                "authorization_code": {"type": "string"},
                "response_code": {"type": "string"}
            }
        },
        "usecases.HandleNotificationResult": {
            "type": "object",
            "properties": {
                "reservation_id": {"type": "string"},
                "order_reference": {"type": "string"},
                "applied": {"type": "boolean"},
                "duplicate": {"type": "boolean"},
                "ignored": {"type": "boolean"},
                "payment_status": {"type": "string"}
            }
        },
        "usecases.FlaggedNotificationView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "reason": {"type": "string"},
                "order_reference": {"type": "string"},
                "source_ip": {"type": "string"},
                "detail": {"type": "string"},
                "received_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "Bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tourbook Payments API",
	Description:      "Card payment authorization for tour reservations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
