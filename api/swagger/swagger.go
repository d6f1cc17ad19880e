package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LENGOLF Time Clock API",
        "description": "Staff time clock, shift reports and payroll exports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Back-office login"},
        {"name": "TimeClock", "description": "Kiosk punches and raw entries"},
        {"name": "Reports", "description": "Shift and analytics reports"},
        {"name": "Exports", "description": "Async CSV/PDF/XLSX exports"},
        {"name": "Staff", "description": "Roster management"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate back-office user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-clock/punch": {
            "post": {
                "tags": ["TimeClock"],
                "summary": "Record a clock event",
                "description": "Staff punch with a PIN; the server decides clock_in or clock_out",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PunchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "PIN not recognised"}
                }
            }
        },
        "/time-clock/entries": {
            "get": {
                "tags": ["TimeClock"],
                "summary": "List raw clock events",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start_date", "in": "query", "type": "string"},
                    {"name": "end_date", "in": "query", "type": "string"},
                    {"name": "staff_id", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-clock/status/{staffId}": {
            "get": {
                "tags": ["TimeClock"],
                "summary": "Open shift status for a staff member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "staffId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Staff not found"}
                }
            }
        },
        "/time-clock/report/shifts": {
            "get": {
                "tags": ["Reports"],
                "summary": "Work shift report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"},
                    {"name": "staff_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Entry data failed integrity checks"}
                }
            }
        },
        "/time-clock/report/analytics": {
            "get": {
                "tags": ["Reports"],
                "summary": "Per-staff analytics report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "start_date", "in": "query", "required": true, "type": "string"},
                    {"name": "end_date", "in": "query", "required": true, "type": "string"},
                    {"name": "staff_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-clock/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Enqueue an export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/time-clock/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Job not found"}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "summary": "List roster members",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Add a roster member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStaffRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "PIN already in use"}
                }
            }
        },
        "/staff/{id}": {
            "get": {
                "tags": ["Staff"],
                "summary": "Get roster member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Staff"],
                "summary": "Update roster member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStaffRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Staff"],
                "summary": "Deactivate roster member",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "PunchRequest": {
            "type": "object",
            "properties": {
                "pin": {"type": "string"},
                "photo_captured": {"type": "boolean"},
                "camera_error": {"type": "string"},
                "device_id": {"type": "string"}
            },
            "required": ["pin"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["shifts", "analytics"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "staff_id": {"type": "integer"},
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]}
            },
            "required": ["type", "start_date", "end_date", "format"]
        },
        "CreateStaffRequest": {
            "type": "object",
            "properties": {
                "staff_name": {"type": "string"},
                "pin": {"type": "string"}
            },
            "required": ["staff_name", "pin"]
        },
        "UpdateStaffRequest": {
            "type": "object",
            "properties": {
                "staff_name": {"type": "string"},
                "pin": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
