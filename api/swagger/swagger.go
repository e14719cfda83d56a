package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy Admin Console",
        "description": "Staff console over the academy REST API: students, enrollments, payments.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student directory and saves"},
        {"name": "Payments", "description": "Monthly payment flow"},
        {"name": "ClassOptions", "description": "Class offerings"},
        {"name": "Audit", "description": "Mutations issued by the console"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "q", "in": "query", "type": "string", "description": "Substring of the DNI or of \"last first\""},
                    {"name": "family", "in": "query", "type": "string", "enum": ["all", "yes", "no"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Export the filtered student table",
                "produces": ["text/csv", "application/pdf", "text/plain"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "txt"]},
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "family", "in": "query", "type": "string", "enum": ["all", "yes", "no"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Students"],
                "summary": "Update student and reconcile enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Save already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Reconciliation aborted; details list committed steps", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/enrollments": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's enrollments",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/payment": {
            "get": {
                "tags": ["Payments"],
                "summary": "Current month payment of a student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No payment due this month", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/preview": {
            "post": {
                "tags": ["Payments"],
                "summary": "Recompute the amount due for a payment method",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PaymentPreviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/{id}/finalize": {
            "post": {
                "tags": ["Payments"],
                "summary": "Record a payment as paid today",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PaymentFinalizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/class-options": {
            "get": {
                "tags": ["ClassOptions"],
                "summary": "List class options",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "Mutations issued for one resource",
                "parameters": [
                    {"name": "resource", "in": "query", "required": true, "type": "string", "enum": ["students", "enrollments", "payments"]},
                    {"name": "resource_id", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "EnrollmentRequest": {
            "type": "object",
            "required": ["option", "start"],
            "properties": {
                "id": {"type": "integer", "description": "Omitted for new enrollments"},
                "option": {"type": "string"},
                "start": {"type": "string", "format": "date"}
            }
        },
        "StudentRequest": {
            "type": "object",
            "required": ["DNI", "cuil", "first_name", "last_name", "birth_date"],
            "properties": {
                "DNI": {"type": "string", "pattern": "^[0-9]+$"},
                "cuil": {"type": "string", "pattern": "^[0-9]{11}$"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "birth_date": {"type": "string", "format": "date"},
                "contact": {"type": "string"},
                "is_family_member": {"type": "boolean"},
                "active": {"type": "boolean"},
                "enrollments": {"type": "array", "items": {"$ref": "#/definitions/EnrollmentRequest"}}
            }
        },
        "PaymentPreviewRequest": {
            "type": "object",
            "required": ["method"],
            "properties": {
                "method": {"type": "string", "enum": ["cash", "transfer"]}
            }
        },
        "PaymentFinalizeRequest": {
            "type": "object",
            "required": ["method", "amount_paid"],
            "properties": {
                "method": {"type": "string", "enum": ["cash", "transfer"]},
                "amount_paid": {"type": "integer", "minimum": 0}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
