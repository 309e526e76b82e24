// Package docs registers the polyglot OpenAPI document with swag so the
// Swagger UI at /swagger/ can serve it. Import it for its side effect.
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
        "/v1/languages": {
            "get": {"tags": ["language"], "summary": "Supported languages", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/language.Descriptor"}}}}}
        },
        "/v1/sessions": {
            "post": {"tags": ["sessions"], "summary": "Create a session", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}}}
        },
        "/v1/sessions/{id}": {
            "get": {"tags": ["sessions"], "summary": "Get a session", "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "404": {"$ref": "#/responses/error"}}},
            "delete": {"tags": ["sessions"], "summary": "Delete a session", "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"204": {"description": "No Content"}, "404": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/mode": {
            "put": {"tags": ["input"], "summary": "Switch input mode", "description": "One of typed, image, voice, file. The current text is kept.",
                "parameters": [{"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/message.ModeRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "400": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/input/text": {
            "post": {"tags": ["input"], "summary": "Typed input",
                "parameters": [{"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/message.InputRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "409": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/input/image": {
            "post": {"tags": ["input"], "summary": "Image input (OCR)", "consumes": ["image/png", "image/jpeg"], "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "400": {"$ref": "#/responses/error"}, "409": {"$ref": "#/responses/error"}, "502": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/input/voice": {
            "post": {"tags": ["input"], "summary": "Voice input", "consumes": ["audio/wav", "audio/ogg", "audio/mpeg", "audio/webm"], "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "409": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/input/file": {
            "post": {"tags": ["input"], "summary": "Text file input", "consumes": ["text/plain"], "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "409": {"$ref": "#/responses/error"}, "422": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/language": {
            "get": {"tags": ["language"], "summary": "Detect language", "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}}}
        },
        "/v1/sessions/{id}/chat": {
            "post": {"tags": ["chat"], "summary": "Chat",
                "parameters": [{"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/message.ChatRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "502": {"$ref": "#/responses/error"}}},
            "delete": {"tags": ["chat"], "summary": "Clear chat", "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}}}
        },
        "/v1/sessions/{id}/chat/ws": {
            "get": {"tags": ["chat"], "summary": "Chat over WebSocket", "description": "Send {\"text\": \"...\"} frames; each is answered with {\"role\": \"assistant\", \"text\": \"...\"}.",
                "parameters": [{"$ref": "#/parameters/id"}], "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/v1/sessions/{id}/translate": {
            "post": {"tags": ["translation"], "summary": "Translate", "description": "Target may be a display name (Anglais), a translation code (eng_Latn) or a speech code (en).",
                "parameters": [{"$ref": "#/parameters/id"}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/message.TranslateRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}, "400": {"$ref": "#/responses/error"}, "502": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/history": {
            "get": {"tags": ["translation"], "summary": "Translation history, newest first", "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message.Result"}}}}
        },
        "/v1/sessions/{id}/history/export": {
            "get": {"tags": ["translation"], "summary": "Export history", "produces": ["application/json", "application/yaml"],
                "parameters": [{"$ref": "#/parameters/id"}, {"in": "query", "name": "format", "type": "string", "enum": ["json", "yaml"]}],
                "responses": {"200": {"description": "OK"}, "400": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/download": {
            "get": {"tags": ["translation"], "summary": "Download the last translation as traduction.txt", "produces": ["text/plain"], "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "string"}}, "409": {"$ref": "#/responses/error"}}}
        },
        "/v1/sessions/{id}/speak/{source}": {
            "post": {"tags": ["audio"], "summary": "Speak the current text or the last translation", "produces": ["audio/wav", "audio/mpeg", "application/json"],
                "parameters": [{"$ref": "#/parameters/id"}, {"in": "path", "name": "source", "required": true, "type": "string", "enum": ["input", "translation"]}],
                "responses": {"200": {"description": "Audio clip, or a JSON result carrying notices"}, "400": {"$ref": "#/responses/error"}}}
        }
    },
    "parameters": {
        "id": {"in": "path", "name": "id", "required": true, "type": "string", "description": "Session ID"}
    },
    "responses": {
        "error": {"description": "Error", "schema": {"$ref": "#/definitions/errorBody"}}
    },
    "definitions": {
        "errorBody": {"type": "object", "properties": {"error": {"type": "string"}}},
        "message.ModeRequest": {"type": "object", "properties": {"mode": {"type": "string", "enum": ["typed", "image", "voice", "file"]}}},
        "message.InputRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "message.ChatRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "message.TranslateRequest": {"type": "object", "properties": {"target": {"type": "string"}}},
        "message.Notice": {"type": "object", "properties": {"level": {"type": "string", "enum": ["info", "success", "warning", "error"]}, "text": {"type": "string"}}},
        "language.Descriptor": {"type": "object", "properties": {"name": {"type": "string"}, "code": {"type": "string"}, "speech": {"type": "string"}}},
        "session.Turn": {"type": "object", "properties": {"role": {"type": "string"}, "text": {"type": "string"}}},
        "session.Record": {"type": "object", "properties": {"time": {"type": "string", "format": "date-time"}, "source": {"type": "string"}, "translated": {"type": "string"}, "source_code": {"type": "string"}, "target_code": {"type": "string"}}},
        "session.Result": {"type": "object", "properties": {"text": {"type": "string"}, "target": {"$ref": "#/definitions/language.Descriptor"}}},
        "session.Snapshot": {"type": "object", "properties": {
            "id": {"type": "string"}, "mode": {"type": "string"}, "current_text": {"type": "string"},
            "chat": {"type": "array", "items": {"$ref": "#/definitions/session.Turn"}},
            "history": {"type": "array", "items": {"$ref": "#/definitions/session.Record"}},
            "last_result": {"$ref": "#/definitions/session.Result"}}},
        "message.Audio": {"type": "object", "properties": {"kind": {"type": "string"}, "file": {"type": "string"}, "content_type": {"type": "string"}, "data": {"type": "string", "format": "byte"}}},
        "message.HistoryEntry": {"type": "object", "properties": {"clock": {"type": "string"}, "source_summary": {"type": "string"}, "translated_summary": {"type": "string"}, "record": {"$ref": "#/definitions/session.Record"}}},
        "message.Result": {"type": "object", "properties": {
            "session_id": {"type": "string"},
            "session": {"$ref": "#/definitions/session.Snapshot"},
            "language": {"$ref": "#/definitions/language.Descriptor"},
            "reply": {"type": "string"},
            "translation": {"$ref": "#/definitions/session.Result"},
            "audio": {"$ref": "#/definitions/message.Audio"},
            "history": {"type": "array", "items": {"$ref": "#/definitions/message.HistoryEntry"}},
            "notices": {"type": "array", "items": {"$ref": "#/definitions/message.Notice"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "polyglot API",
	Description:      "Session-scoped chat and translation service: typed, image, voice and file input, language detection, translation history and speech rendering.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
