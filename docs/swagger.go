// Package docs registers the OpenAPI description served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Users", "description": "Registration, login and reminder channels"},
        {"name": "Projects", "description": "Project management"},
        {"name": "Tasks", "description": "Board columns, ranks and the Eisenhower matrix"},
        {"name": "Subtasks", "description": "Checklist items of a task"},
        {"name": "Focus", "description": "Focus sessions and the Blitz flow"},
        {"name": "Reports", "description": "Dashboard counts and productivity reports"}
    ],
    "paths": {
        "/register": {"post": {"tags": ["Users"], "summary": "Register a user and create the Inbox project"}},
        "/login": {"post": {"tags": ["Users"], "summary": "Exchange credentials for a JWT"}},
        "/me": {"get": {"tags": ["Users"], "summary": "Current user", "security": [{"BearerAuth": []}]}},
        "/me/telegram": {"put": {"tags": ["Users"], "summary": "Link or unlink a Telegram chat", "security": [{"BearerAuth": []}]}},
        "/projects": {
            "get": {"tags": ["Projects"], "summary": "List projects", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Projects"], "summary": "Create a project", "security": [{"BearerAuth": []}]}
        },
        "/projects/{id}": {
            "get": {"tags": ["Projects"], "summary": "Get a project", "security": [{"BearerAuth": []}]},
            "put": {"tags": ["Projects"], "summary": "Update a project", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Projects"], "summary": "Delete a project with its tasks", "security": [{"BearerAuth": []}]}
        },
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks (project_id, column, include_archived)", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Tasks"], "summary": "Create a task at the end of its column", "security": [{"BearerAuth": []}]}
        },
        "/tasks/archived": {"get": {"tags": ["Tasks"], "summary": "List archived tasks", "security": [{"BearerAuth": []}]}},
        "/tasks/matrix": {"get": {"tags": ["Tasks"], "summary": "Pending tasks grouped by quadrant", "security": [{"BearerAuth": []}]}},
        "/tasks/reorder": {"put": {"tags": ["Tasks"], "summary": "Rank tasks in the given order", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}": {
            "get": {"tags": ["Tasks"], "summary": "Get a task with subtasks", "security": [{"BearerAuth": []}]},
            "put": {"tags": ["Tasks"], "summary": "Partially update a task", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Tasks"], "summary": "Delete a task", "security": [{"BearerAuth": []}]}
        },
        "/tasks/{id}/move": {"patch": {"tags": ["Tasks"], "summary": "Move a task to a column", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/matrix": {"patch": {"tags": ["Tasks"], "summary": "Drop a task on a matrix quadrant", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/drop": {"post": {"tags": ["Tasks"], "summary": "Drop a task at a row of a column", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/reopen": {"post": {"tags": ["Tasks"], "summary": "Send a task back to Today", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/complete": {"post": {"tags": ["Tasks"], "summary": "Move a task to Done", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/archive": {"post": {"tags": ["Tasks"], "summary": "Archive a task", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/unarchive": {"post": {"tags": ["Tasks"], "summary": "Restore an archived task", "security": [{"BearerAuth": []}]}},
        "/tasks/{id}/subtasks": {
            "get": {"tags": ["Subtasks"], "summary": "List subtasks", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["Subtasks"], "summary": "Add a subtask", "security": [{"BearerAuth": []}]}
        },
        "/subtasks/{id}": {
            "put": {"tags": ["Subtasks"], "summary": "Rename or complete a subtask", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Subtasks"], "summary": "Delete a subtask", "security": [{"BearerAuth": []}]}
        },
        "/focus": {
            "get": {"tags": ["Focus"], "summary": "Current session", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["Focus"], "summary": "End the session, saving with save=true", "security": [{"BearerAuth": []}]}
        },
        "/focus/start": {"post": {"tags": ["Focus"], "summary": "Start a session for a task", "security": [{"BearerAuth": []}]}},
        "/focus/toggle": {"post": {"tags": ["Focus"], "summary": "Pause or resume", "security": [{"BearerAuth": []}]}},
        "/focus/save": {"post": {"tags": ["Focus"], "summary": "Save minutes worked", "security": [{"BearerAuth": []}]}},
        "/focus/skip": {"post": {"tags": ["Focus"], "summary": "Save and advance to the next Today task", "security": [{"BearerAuth": []}]}},
        "/focus/complete": {"post": {"tags": ["Focus"], "summary": "Save, complete and advance", "security": [{"BearerAuth": []}]}},
        "/dashboard/stats": {"get": {"tags": ["Reports"], "summary": "Dashboard counts", "security": [{"BearerAuth": []}]}},
        "/reports/summary": {"get": {"tags": ["Reports"], "summary": "Totals and seven day completion trend", "security": [{"BearerAuth": []}]}},
        "/reports/export": {"get": {"tags": ["Reports"], "summary": "Productivity report as PDF", "security": [{"BearerAuth": []}]}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Blitzit API",
	Description:      "Task lifecycle, focus sessions and reminders for Blitzit",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
