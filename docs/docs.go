// Package docs registers the OpenAPI document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "search", "type": "string", "description": "Case-insensitive retailer substring"},
                    {"in": "query", "name": "day", "type": "string", "default": "all", "description": "Case-insensitive day substring, or all"}
                ],
                "responses": {
                    "200": {"description": "Matching tasks", "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "task", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "Created task", "schema": {"$ref": "#/definitions/Task"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Store failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Get a task",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Task", "schema": {"$ref": "#/definitions/Task"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Replace the supplied task fields",
                "consumes": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "fields", "required": true, "schema": {"$ref": "#/definitions/TaskFields"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/SuccessResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/SuccessResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "Formats": {
            "type": "object",
            "properties": {
                "xlsx": {"type": "integer"},
                "csv": {"type": "integer"},
                "txt": {"type": "integer"},
                "mail": {"type": "integer"}
            }
        },
        "TaskFile": {
            "type": "object",
            "properties": {
                "downloadName": {"type": "string"},
                "requiredName": {"type": "string"}
            }
        },
        "Task": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "retailer": {"type": "string"},
                "day": {"type": "string"},
                "fileCount": {"type": "integer"},
                "formats": {"$ref": "#/definitions/Formats"},
                "loadType": {"type": "string", "enum": ["Direct load", "Indirect load"]},
                "link": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "files": {"type": "array", "items": {"$ref": "#/definitions/TaskFile"}},
                "completed": {"type": "boolean"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateTaskRequest": {
            "type": "object",
            "required": ["retailer", "day"],
            "properties": {
                "retailer": {"type": "string"},
                "day": {"type": "string"},
                "fileCount": {"type": "integer"},
                "formats": {"$ref": "#/definitions/Formats"},
                "loadType": {"type": "string", "enum": ["Direct load", "Indirect load"]},
                "link": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "files": {"type": "array", "items": {"$ref": "#/definitions/TaskFile"}}
            }
        },
        "TaskFields": {
            "type": "object",
            "properties": {
                "retailer": {"type": "string"},
                "day": {"type": "string"},
                "fileCount": {"type": "integer"},
                "formats": {"$ref": "#/definitions/Formats"},
                "loadType": {"type": "string", "enum": ["Direct load", "Indirect load"]},
                "link": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"},
                "files": {"type": "array", "items": {"$ref": "#/definitions/TaskFile"}},
                "completed": {"type": "boolean"}
            }
        },
        "SuccessResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and a token from 'loadboard token issue'"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "loadboard API",
	Description:      "Retail data-load task tracking",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
