package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Wiki Drafts API",
        "description": "Saves, resumes and reviews unpublished page edits.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Drafts", "description": "Editor drafts of page edits"},
        {"name": "Approval", "description": "Drafts waiting for a reviewer"}
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
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/drafts": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Save a draft",
                "description": "Inserts a new draft, or updates the caller's draft when id is set. Saving the same token twice keeps the first draft.",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SaveDraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated or deduplicated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Inserted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Draft belongs to another user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Draft not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Drafts"],
                "summary": "List the caller's drafts",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "status", "type": "string", "description": "Draft status, normal for plain drafts"},
                    {"in": "query", "name": "namespace", "type": "integer"},
                    {"in": "query", "name": "title", "type": "string"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/drafts/{id}": {
            "get": {
                "tags": ["Drafts"],
                "summary": "Get a draft",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Draft not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Drafts"],
                "summary": "Discard one of the caller's drafts",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "204": {"description": "Discarded"},
                    "404": {"description": "No such draft owned by the caller", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/drafts/{id}/propose": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Submit one of the caller's drafts for approval",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "Proposed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Draft belongs to another user", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/drafts/{id}/refuse": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Refuse a proposed draft",
                "description": "Requires the drafts-approve capability.",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}],
                "responses": {
                    "200": {"description": "Refused", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not permitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Draft not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/drafts-to-approve": {
            "get": {
                "tags": ["Approval"],
                "summary": "Drafts waiting for approval",
                "description": "Lists proposed drafts of all users. With discard=<id> the caller's draft is discarded first, and returnto=edit|view redirects to the page keeping the section parameter.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "discard", "type": "integer"},
                    {"in": "query", "name": "returnto", "type": "string", "enum": ["edit", "view"]},
                    {"in": "query", "name": "section", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "303": {"description": "Redirect to the page after discarding"},
                    "403": {"description": "Not permitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SaveDraftRequest": {
            "type": "object",
            "required": ["token", "title"],
            "properties": {
                "id": {"type": "integer"},
                "token": {"type": "string"},
                "namespace": {"type": "integer"},
                "title": {"type": "string"},
                "pageId": {"type": "integer"},
                "section": {"type": "integer", "minimum": 0, "description": "Section number, omitted or null for the whole page"},
                "startTime": {"type": "string", "format": "date-time"},
                "editTime": {"type": "string", "format": "date-time"},
                "scrollTop": {"type": "integer"},
                "text": {"type": "string"},
                "summary": {"type": "string"},
                "minorEdit": {"type": "boolean"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
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
