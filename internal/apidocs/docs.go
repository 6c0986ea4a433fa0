// Package apidocs registers the OpenAPI document of the codeseed HTTP API
// with swag. Keep it in step with the annotation stubs in
// internal/viewer/routes.
package apidocs

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
        "/api/projects": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "List projects, newest first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/projectList"}},
                    "502": {"description": "store failure", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/projects/files": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Load every record of a project",
                "parameters": [{"type": "string", "name": "project", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/projectFiles"}},
                    "404": {"description": "unknown project", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/projects/export": {
            "get": {
                "produces": ["application/zip"],
                "tags": ["projects"],
                "summary": "Download a project as a ZIP archive",
                "parameters": [{"type": "string", "name": "project", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "archive", "schema": {"type": "file"}},
                    "404": {"description": "unknown project", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/projects/import": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Import a ZIP archive as a new project",
                "parameters": [{"type": "file", "name": "file", "in": "formData", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/importResponse"}},
                    "400": {"description": "bad archive", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/projects/file/save": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Save one file, last write wins",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/record"}},
                    "400": {"description": "invalid name", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/projects/file/delete": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Delete one file",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/statusOK"}},
                    "404": {"description": "no such file", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/projects/delete": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Delete a project and all of its records",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/projectRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/statusOK"}},
                    "404": {"description": "no such project", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/generate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate a site from a prompt",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/generateRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/generateResponse"}},
                    "400": {"description": "empty prompt", "schema": {"$ref": "#/definitions/apiError"}},
                    "409": {"description": "generation already running", "schema": {"$ref": "#/definitions/apiError"}},
                    "502": {"description": "backend failure", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/api/editor/state": {
            "get": {
                "produces": ["application/json"],
                "tags": ["editor"],
                "summary": "Editor state of the caller for a project",
                "parameters": [{"type": "string", "name": "project", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/editorState"}}}
            }
        },
        "/api/editor/{op}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["editor"],
                "summary": "Apply an editor operation: open, close, edit, save, toggle, insert or remove",
                "parameters": [
                    {"type": "string", "name": "op", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/editorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/editorState"}},
                    "400": {"description": "invalid operation", "schema": {"$ref": "#/definitions/apiError"}},
                    "404": {"description": "unknown file or node", "schema": {"$ref": "#/definitions/apiError"}}
                }
            }
        },
        "/preview": {
            "get": {
                "produces": ["text/html"],
                "tags": ["preview"],
                "summary": "Composed preview document",
                "parameters": [
                    {"type": "string", "name": "project", "in": "query", "required": true},
                    {"type": "string", "name": "html", "in": "query"}
                ],
                "responses": {"200": {"description": "document"}, "404": {"description": "no html file"}}
            }
        },
        "/preview/frame": {
            "get": {
                "produces": ["text/html"],
                "tags": ["preview"],
                "summary": "Host page with the document in a sandboxed iframe",
                "parameters": [{"type": "string", "name": "project", "in": "query", "required": true}],
                "responses": {"200": {"description": "page"}}
            }
        },
        "/preview/live": {
            "get": {
                "tags": ["preview"],
                "summary": "Websocket stream of recomposed documents",
                "parameters": [{"type": "string", "name": "project", "in": "query", "required": true}],
                "responses": {"101": {"description": "switching protocols"}}
            }
        },
        "/preview/file": {
            "get": {
                "tags": ["preview"],
                "summary": "Raw project file",
                "parameters": [
                    {"type": "string", "name": "project", "in": "query", "required": true},
                    {"type": "string", "name": "path", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "file"}, "404": {"description": "no such file"}}
            }
        },
        "/source": {
            "get": {
                "produces": ["text/html"],
                "tags": ["preview"],
                "summary": "Read-only source view; markdown is rendered",
                "parameters": [
                    {"type": "string", "name": "project", "in": "query", "required": true},
                    {"type": "string", "name": "file", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "fragment"}}
            }
        },
        "/api/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Recent log lines",
                "parameters": [{"type": "string", "name": "logger", "in": "query"}, {"type": "integer", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/logs/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["logs"],
                "summary": "SSE tail of the log",
                "parameters": [{"type": "string", "name": "logger", "in": "query"}, {"type": "integer", "name": "backlog", "in": "query"}],
                "responses": {"200": {"description": "SSE stream"}}
            }
        }
    },
    "definitions": {
        "apiError": {"type": "object", "properties": {"error": {"type": "string", "example": "Failed to generate site."}}},
        "projectRequest": {"type": "object", "properties": {"project": {"type": "string"}}},
        "statusOK": {"type": "object", "properties": {"status": {"type": "string", "example": "deleted"}}},
        "record": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "filename": {"type": "string", "example": "index.html"},
                "content": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "project_id": {"type": "string"}
            }
        },
        "projectList": {
            "type": "object",
            "properties": {
                "projects": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "project_id": {"type": "string"},
                            "created_at": {"type": "string", "format": "date-time"}
                        }
                    }
                }
            }
        },
        "projectFiles": {
            "type": "object",
            "properties": {
                "project_id": {"type": "string"},
                "files": {"type": "array", "items": {"$ref": "#/definitions/record"}}
            }
        },
        "importResponse": {
            "type": "object",
            "properties": {"project_id": {"type": "string"}, "files": {"type": "integer"}}
        },
        "fileRequest": {
            "type": "object",
            "properties": {
                "project": {"type": "string"},
                "filename": {"type": "string", "example": "style.css"},
                "content": {"type": "string"}
            }
        },
        "generateRequest": {"type": "object", "properties": {"prompt": {"type": "string", "example": "a bakery landing page"}}},
        "generateResponse": {
            "type": "object",
            "properties": {
                "project_id": {"type": "string"},
                "files": {"type": "object", "additionalProperties": {"type": "string"}},
                "preview_url": {"type": "string"},
                "status": {"type": "string", "example": "stored"}
            }
        },
        "editorRequest": {
            "type": "object",
            "properties": {
                "project": {"type": "string"},
                "name": {"type": "string"},
                "content": {"type": "string"},
                "path": {"type": "array", "items": {"type": "string"}},
                "kind": {"type": "string", "enum": ["file", "folder"]}
            }
        },
        "editorState": {
            "type": "object",
            "properties": {
                "tree": {"type": "array", "items": {"type": "object"}},
                "tabs": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {"type": "string"},
                            "language": {"type": "string"},
                            "dirty": {"type": "boolean"},
                            "content": {"type": "string"}
                        }
                    }
                },
                "active": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "codeseed API",
	Description:      "Projects, generation, editor sessions and previews of a codeseed workspace.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
