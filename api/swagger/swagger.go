package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "College Management Timetable API",
        "description": "Bulk timetable mutation engine: clone, faculty replace, bulk reschedule",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "BulkOperations", "description": "Bulk timetable mutations and their lifecycle"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Not ready"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/bulk-operations": {
            "post": {
                "tags": ["BulkOperations"],
                "summary": "Run a bulk timetable operation",
                "description": "Dispatches clone_timetable, faculty_replace, or bulk_reschedule. options.validateOnly and options.dryRun short-circuit into their read-only variants; options.async queues the execution.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkOperationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["BulkOperations"],
                "summary": "List past bulk operations",
                "description": "Admins see the full history; other callers only operations they started.",
                "parameters": [
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated statuses"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/bulk-operations/preview": {
            "post": {
                "tags": ["BulkOperations"],
                "summary": "Dry-run a bulk operation",
                "description": "Simulates the operation without writing. format=pdf or format=csv returns the conflict report as a file instead of JSON.",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "pdf", "csv"], "default": "json"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkOperationRequest"}}
                ],
                "produces": ["application/json", "application/pdf", "text/csv"],
                "responses": {
                    "200": {"description": "Preview or report file", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/bulk-operations/{id}": {
            "get": {
                "tags": ["BulkOperations"],
                "summary": "Get one bulk operation with its log trail",
                "description": "Admins may inspect any operation; other callers only their own.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/bulk-operations/{id}/progress": {
            "get": {
                "tags": ["BulkOperations"],
                "summary": "Poll bulk operation progress",
                "description": "Admins may poll any operation; other callers only their own.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/bulk-operations/{id}/cancel": {
            "post": {
                "tags": ["BulkOperations"],
                "summary": "Cancel a pending or running bulk operation",
                "description": "Cancellation is cooperative: entries already committed stay committed.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already terminal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Metrics exposition"}
                }
            }
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
        "DateRange": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"}
            },
            "required": ["start", "end"]
        },
        "SourceData": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "facultyId": {"type": "string"},
                "subjectId": {"type": "string"},
                "dateRange": {"$ref": "#/definitions/DateRange"}
            }
        },
        "TargetData": {
            "type": "object",
            "properties": {
                "batchId": {"type": "string"},
                "facultyId": {"type": "string"},
                "dateRange": {"$ref": "#/definitions/DateRange"},
                "dayOffset": {"type": "integer"}
            }
        },
        "OperationOptions": {
            "type": "object",
            "properties": {
                "handleConflicts": {"type": "string", "enum": ["skip", "override"]},
                "preserveFaculty": {"type": "boolean"},
                "maintainWorkload": {"type": "boolean"},
                "effectiveFrom": {"type": "string", "format": "date-time"},
                "moveType": {"type": "string", "enum": ["shift", "map", "redistribute"]},
                "excludeWeekends": {"type": "boolean"},
                "respectBlackouts": {"type": "boolean"},
                "validateOnly": {"type": "boolean"},
                "dryRun": {"type": "boolean"},
                "async": {"type": "boolean"},
                "showConflictVisualization": {"type": "boolean"}
            }
        },
        "BulkOperationRequest": {
            "type": "object",
            "properties": {
                "operation": {"type": "string", "enum": ["clone_timetable", "faculty_replace", "bulk_reschedule"]},
                "sourceData": {"$ref": "#/definitions/SourceData"},
                "targetData": {"$ref": "#/definitions/TargetData"},
                "options": {"$ref": "#/definitions/OperationOptions"}
            },
            "required": ["operation"]
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
