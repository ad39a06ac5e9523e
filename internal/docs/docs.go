// Package docs registers the aardd OpenAPI document with swag. It is
// imported for side effects by the swagger build of the HTTP layer.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/lookup": {
            "get": {
                "tags": ["lookup"],
                "summary": "Look up entries",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LookupResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/lookup/preferred": {
            "get": {
                "tags": ["lookup"],
                "summary": "Preferred-dictionary lookup",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "string", "name": "source", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.LookupResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/random": {
            "get": {
                "tags": ["lookup"],
                "summary": "Random entry",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Entry"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/sources": {
            "get": {
                "tags": ["sources"],
                "summary": "List dictionaries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SourcesResponse"}}
                }
            },
            "post": {
                "tags": ["sources"],
                "summary": "Add a dictionary file",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.AddSourceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Source"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/sources/{id}": {
            "delete": {
                "tags": ["sources"],
                "summary": "Remove a dictionary",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/sources/{id}/active": {
            "put": {
                "tags": ["sources"],
                "summary": "Toggle whether a dictionary takes part in lookups",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.SetActiveRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/discover": {
            "post": {
                "tags": ["sources"],
                "summary": "Rediscover dictionaries",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.DiscoverResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/bookmarks": {
            "get": {
                "tags": ["bookmarks"],
                "summary": "List bookmarks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BookmarksResponse"}}
                }
            },
            "post": {
                "tags": ["bookmarks"],
                "summary": "Bookmark an entry",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.BookmarkRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.Bookmark"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["bookmarks"],
                "summary": "Remove a bookmark",
                "parameters": [{"type": "string", "name": "url", "in": "query", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "tags": ["bookmarks"],
                "summary": "Viewed entries, oldest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.BookmarksResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.Entry": {
            "type": "object",
            "properties": {
                "source_id": {"type": "string", "example": "wordnet-3.1"},
                "key": {"type": "string", "example": "serendipity"},
                "blob_id": {"type": "integer", "example": 4711},
                "fragment": {"type": "string"},
                "content_url": {"type": "string", "example": "/content/wordnet-3.1/serendipity?blob=4711"},
                "url": {"type": "string"}
            }
        },
        "types.LookupResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "string", "example": "seren"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/types.Entry"}},
                "exhausted": {"type": "boolean"}
            }
        },
        "types.Source": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "wordnet-3.1"},
                "label": {"type": "string", "example": "WordNet 3.1"},
                "path": {"type": "string"},
                "active": {"type": "boolean"},
                "open": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "types.SourcesResponse": {
            "type": "object",
            "properties": {
                "sources": {"type": "array", "items": {"$ref": "#/definitions/types.Source"}}
            }
        },
        "types.AddSourceRequest": {
            "type": "object",
            "properties": {"path": {"type": "string"}}
        },
        "types.SetActiveRequest": {
            "type": "object",
            "properties": {"active": {"type": "boolean"}}
        },
        "types.DiscoverResponse": {
            "type": "object",
            "properties": {"started": {"type": "boolean"}}
        },
        "types.BookmarkRequest": {
            "type": "object",
            "properties": {"content_url": {"type": "string"}}
        },
        "types.Bookmark": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "content_url": {"type": "string"},
                "source_id": {"type": "string"},
                "key": {"type": "string"},
                "available": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "types.BookmarksResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/types.Bookmark"}}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "aardd API",
	Description:      "Local dictionary lookup daemon.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
