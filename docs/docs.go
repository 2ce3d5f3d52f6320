// Package docs holds the OpenAPI description of the HTTP API.
package docs

import (
	"log/slog"
	"net/http"

	"github.com/swaggo/swag/v2"
)

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/api/v1/otp/generate": {
            "post": {
                "tags": ["OTP"],
                "summary": "Generate OTP",
                "description": "Generates a numeric OTP for the email address and sends it by email. Any previous code for the address is replaced.",
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/inbound.GenerateRequest"}}}
                },
                "responses": {
                    "200": {"description": "email_ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.resultEnvelope"}}}},
                    "400": {"description": "email_invalid or email_fail", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.resultEnvelope"}}}},
                    "422": {"description": "Validation error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.errorResponse"}}}},
                    "500": {"description": "Internal server error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.errorResponse"}}}}
                }
            }
        },
        "/api/v1/otp/verify": {
            "post": {
                "tags": ["OTP"],
                "summary": "Verify OTP",
                "description": "Verifies the OTP for the email address. A wrong code consumes one attempt.",
                "requestBody": {
                    "required": true,
                    "content": {"application/json": {"schema": {"$ref": "#/components/schemas/inbound.VerifyRequest"}}}
                },
                "responses": {
                    "200": {"description": "otp_ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.resultEnvelope"}}}},
                    "400": {"description": "otp_fail, otp_timeout or remaining attempts", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.resultEnvelope"}}}},
                    "422": {"description": "Validation error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.errorResponse"}}}},
                    "500": {"description": "Internal server error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/router.errorResponse"}}}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "components": {
        "schemas": {
            "inbound.GenerateRequest": {
                "type": "object",
                "required": ["email"],
                "properties": {"email": {"type": "string", "example": "jane@example.com"}}
            },
            "inbound.VerifyRequest": {
                "type": "object",
                "required": ["email", "otp"],
                "properties": {
                    "email": {"type": "string", "example": "jane@example.com"},
                    "otp": {"type": "string", "example": "042817"}
                }
            },
            "inbound.ResultResponse": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "status": {"type": "string", "example": "otp_ok"}
                }
            },
            "router.resultEnvelope": {
                "type": "object",
                "properties": {
                    "message": {"type": "string", "example": "OTP is valid and checked."},
                    "data": {"$ref": "#/components/schemas/inbound.ResultResponse"}
                }
            },
            "router.errorResponse": {
                "type": "object",
                "properties": {
                    "message": {"type": "string", "example": "Validation error"},
                    "error": {"type": "object", "additionalProperties": {"type": "string"}}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "gotp API",
	Description:      "Issues and verifies short-lived email one-time passwords.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Handler serves the rendered OpenAPI document.
func Handler(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read openapi document", "error", err)
		http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
