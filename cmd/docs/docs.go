// Package docs registers the swagger document served at /swagger in non-production builds.
// Regenerate with: swag init -g cmd/gl_backend/main.go -o cmd/docs
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
        "/accounts": {
            "get": {"tags": ["accounts"], "summary": "List accounts", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["accounts"], "summary": "Create a new account", "responses": {"201": {"description": "Created"}}}
        },
        "/accounts/seed": {
            "post": {"tags": ["accounts"], "summary": "Seed the standard chart of accounts", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/by-code/{code}": {
            "get": {"tags": ["accounts"], "summary": "Get an account by code", "responses": {"200": {"description": "OK"}}}
        },
        "/accounts/{accountID}": {
            "get": {"tags": ["accounts"], "summary": "Get an account by ID", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["accounts"], "summary": "Update an account", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["accounts"], "summary": "Delete an account", "responses": {"204": {"description": "No Content"}}}
        },
        "/accounts/{accountID}/balance": {
            "get": {"tags": ["accounts"], "summary": "Get an account balance", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/balances/verify": {
            "get": {"tags": ["admin"], "summary": "Compare cached balances with a replay of the log", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/balances/rebuild": {
            "post": {"tags": ["admin"], "summary": "Overwrite drifted cached balances with replayed values", "responses": {"200": {"description": "OK"}}}
        },
        "/journals": {
            "get": {"tags": ["journals"], "summary": "List journal entries", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["journals"], "summary": "Create a draft journal entry", "responses": {"201": {"description": "Created"}}}
        },
        "/journals/{entryID}": {
            "get": {"tags": ["journals"], "summary": "Get a journal entry with its lines", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["journals"], "summary": "Update a draft", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["journals"], "summary": "Delete a draft", "responses": {"204": {"description": "No Content"}}}
        },
        "/journals/{entryID}/post": {
            "post": {"tags": ["journals"], "summary": "Post a draft", "responses": {"200": {"description": "OK"}}}
        },
        "/journals/{entryID}/reverse": {
            "post": {"tags": ["journals"], "summary": "Reverse a posted entry", "responses": {"201": {"description": "Created"}}}
        },
        "/entries/submit": {
            "post": {"tags": ["submissions"], "summary": "Submit an entry from a producer module", "responses": {"201": {"description": "Created"}}}
        },
        "/reports/trial-balance": {
            "get": {"tags": ["reports"], "summary": "Get trial balance", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/ledger/{accountID}": {
            "get": {"tags": ["reports"], "summary": "Get an account ledger", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/balance-sheet": {
            "get": {"tags": ["reports"], "summary": "Get balance sheet", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/profit-and-loss": {
            "get": {"tags": ["reports"], "summary": "Get profit and loss report", "responses": {"200": {"description": "OK"}}}
        },
        "/reports/account-tree": {
            "get": {"tags": ["reports"], "summary": "Get the chart of accounts with rolled-up balances", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "General Ledger API",
	Description:      "Double-entry general ledger: chart of accounts, journal entries, posting and reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
