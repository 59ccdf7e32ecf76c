// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/api/main.go
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
        "/events/": {"post": {"tags": ["events"], "summary": "Create an event", "responses": {"201": {"description": "Created"}}}},
        "/events/{id}/": {
            "get": {"tags": ["events"], "summary": "Event detail", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["events"], "summary": "Update an event", "responses": {"200": {"description": "OK"}}}
        },
        "/events/{id}/delete/": {"post": {"tags": ["events"], "summary": "Soft delete an event", "responses": {"200": {"description": "OK"}}}},
        "/api/events/my/": {"get": {"tags": ["events"], "summary": "Events of the current user", "responses": {"200": {"description": "OK"}}}},
        "/api/events/calendar/": {"get": {"tags": ["events"], "summary": "Calendar feed", "responses": {"200": {"description": "OK"}}}},
        "/events/{id}/invite/{user_id}/": {"post": {"tags": ["participants"], "summary": "Invite a user", "responses": {"201": {"description": "Created"}}}},
        "/events/{id}/invite/": {"post": {"tags": ["participants"], "summary": "Invite a friend", "responses": {"201": {"description": "Created"}}}},
        "/events/invitation/{id}/respond/": {"post": {"tags": ["participants"], "summary": "Accept or decline an invitation", "responses": {"200": {"description": "OK"}}}},
        "/events/{id}/cancel-invite/{participant_id}/": {"post": {"tags": ["participants"], "summary": "Cancel a pending invitation", "responses": {"200": {"description": "OK"}}}},
        "/events/{id}/leave/": {"post": {"tags": ["participants"], "summary": "Leave an event", "responses": {"200": {"description": "OK"}}}},
        "/events/{id}/participants/": {"get": {"tags": ["participants"], "summary": "List participants", "responses": {"200": {"description": "OK"}}}},
        "/events/{id}/my-participant/": {"get": {"tags": ["participants"], "summary": "Own participation", "responses": {"200": {"description": "OK"}}}},
        "/friends/": {"get": {"tags": ["friends"], "summary": "Friends overview", "responses": {"200": {"description": "OK"}}}},
        "/friends/search/": {"get": {"tags": ["friends"], "summary": "Search users", "responses": {"200": {"description": "OK"}}}},
        "/friends/ajax/": {"get": {"tags": ["friends"], "summary": "Friends available for invitation", "responses": {"200": {"description": "OK"}}}},
        "/friends/request/{user_id}/": {"post": {"tags": ["friends"], "summary": "Send a friend request", "responses": {"201": {"description": "Created"}}}},
        "/friends/accept/{id}/": {"post": {"tags": ["friends"], "summary": "Accept a friend request", "responses": {"200": {"description": "OK"}}}},
        "/friends/reject/{id}/": {"post": {"tags": ["friends"], "summary": "Reject a friend request", "responses": {"200": {"description": "OK"}}}},
        "/friends/remove/{user_id}/": {"post": {"tags": ["friends"], "summary": "Remove a friend", "responses": {"200": {"description": "OK"}}}},
        "/api/events/{id}/expenses/": {"get": {"tags": ["expenses"], "summary": "List event expenses", "responses": {"200": {"description": "OK"}}}},
        "/api/events/{id}/expenses/add/": {"post": {"tags": ["expenses"], "summary": "Add an expense", "responses": {"201": {"description": "Created"}}}},
        "/api/expenses/shares/{id}/paid/": {"post": {"tags": ["expenses"], "summary": "Mark a share as paid", "responses": {"200": {"description": "OK"}}}},
        "/api/events/{id}/balances/": {"get": {"tags": ["settlements"], "summary": "Event balances", "responses": {"200": {"description": "OK"}}}},
        "/api/expenses/{id}/settle/": {"post": {"tags": ["settlements"], "summary": "Settle an expense", "responses": {"200": {"description": "OK"}}}},
        "/api/events/{id}/tasks/": {"get": {"tags": ["tasks"], "summary": "List event tasks", "responses": {"200": {"description": "OK"}}}},
        "/api/events/{id}/tasks/add/": {"post": {"tags": ["tasks"], "summary": "Add a task", "responses": {"201": {"description": "Created"}}}},
        "/api/tasks/{id}/status/": {"post": {"tags": ["tasks"], "summary": "Change a task's status", "responses": {"200": {"description": "OK"}}}},
        "/api/tasks/{id}/delete/": {"post": {"tags": ["tasks"], "summary": "Delete a task", "responses": {"200": {"description": "OK"}}}},
        "/notifications/api/": {"get": {"tags": ["notifications"], "summary": "Notification feed", "responses": {"200": {"description": "OK"}}}},
        "/notifications/unread-count/": {"get": {"tags": ["notifications"], "summary": "Unread count", "responses": {"200": {"description": "OK"}}}},
        "/notifications/clear/": {"post": {"tags": ["notifications"], "summary": "Delete all notifications", "responses": {"200": {"description": "OK"}}}},
        "/notifications/mark-all-read/": {"post": {"tags": ["notifications"], "summary": "Mark all read", "responses": {"200": {"description": "OK"}}}},
        "/notifications/{id}/read/": {"post": {"tags": ["notifications"], "summary": "Mark one read", "responses": {"200": {"description": "OK"}}}},
        "/ws/notifications": {"get": {"tags": ["notifications"], "summary": "Notification stream", "responses": {"101": {"description": "Switching Protocols"}}}},
        "/api/users/": {
            "get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Provision a user", "responses": {"201": {"description": "Created"}}}
        },
        "/api/users/me/": {"get": {"tags": ["users"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}},
        "/api/users/{id}/": {"get": {"tags": ["users"], "summary": "Get user by ID", "responses": {"200": {"description": "OK"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Planner API",
	Description:      "Events, invitations, friendships, shared expenses and tasks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
