// Package docs Swagger 文档注册，由 swag init 生成后手动精简
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
        "/health": {"get": {"tags": ["health"], "summary": "存活探针", "responses": {"200": {"description": "OK"}}}},
        "/ready": {"get": {"tags": ["health"], "summary": "就绪探针", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/api/users/": {
            "get": {"tags": ["users"], "summary": "用户列表", "parameters": [{"$ref": "#/parameters/page"}, {"$ref": "#/parameters/page_size"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "创建用户", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/user.CreateRequest"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Username or email already exists"}, "422": {"description": "Validation error"}}}
        },
        "/api/users/{id}": {
            "get": {"tags": ["users"], "summary": "获取用户", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}},
            "put": {"tags": ["users"], "summary": "更新用户", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}},
            "delete": {"tags": ["users"], "summary": "删除用户", "parameters": [{"in": "path", "name": "id", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}}
        },
        "/api/conversations/": {
            "get": {"tags": ["conversations"], "summary": "对话列表", "parameters": [{"in": "query", "name": "user_id", "type": "string"}, {"$ref": "#/parameters/page"}, {"$ref": "#/parameters/page_size"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["conversations"], "summary": "创建对话", "responses": {"200": {"description": "OK"}, "422": {"description": "Validation error"}}}
        },
        "/api/conversations/{id}": {
            "get": {"tags": ["conversations"], "summary": "获取对话", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}},
            "put": {"tags": ["conversations"], "summary": "更新对话", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}},
            "delete": {"tags": ["conversations"], "summary": "删除对话", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}}
        },
        "/api/messages/": {
            "post": {"tags": ["messages"], "summary": "创建消息", "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}, "422": {"description": "Validation error"}}}
        },
        "/api/messages/conversation/{conversation_id}": {
            "get": {"tags": ["messages"], "summary": "对话消息列表", "parameters": [{"in": "path", "name": "conversation_id", "type": "string", "required": true}, {"$ref": "#/parameters/page"}, {"$ref": "#/parameters/page_size"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Conversation not found"}}}
        },
        "/api/messages/{id}": {
            "get": {"tags": ["messages"], "summary": "获取消息", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Message not found"}}},
            "put": {"tags": ["messages"], "summary": "更新消息", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Message not found"}}},
            "delete": {"tags": ["messages"], "summary": "删除消息", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Message not found"}}}
        }
    },
    "parameters": {
        "page": {"in": "query", "name": "page", "type": "integer", "default": 1, "minimum": 1},
        "page_size": {"in": "query", "name": "page_size", "type": "integer", "default": 20, "minimum": 1, "maximum": 100}
    },
    "definitions": {
        "user.CreateRequest": {
            "type": "object",
            "required": ["username", "email"],
            "properties": {
                "username": {"type": "string", "minLength": 3, "maxLength": 50},
                "email": {"type": "string", "maxLength": 100},
                "password": {"type": "string", "minLength": 6}
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
	Title:            "Convo API",
	Description:      "Users, conversations and messages CRUD API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
