// Package docs регистрирует описание API для swag; обработчики размечены
// аннотациями godoc.
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Вход в систему",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Токен выдан"},
                    "401": {"description": "Неверный email или пароль"}
                }
            }
        },
        "/standings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["standings"],
                "summary": "Турнирная таблица",
                "parameters": [
                    {"type": "integer", "name": "group_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Строки таблицы"}
                }
            }
        },
        "/matches/{matchID}/score": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["matches"],
                "summary": "Установить или сбросить счёт матча",
                "parameters": [
                    {"type": "integer", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Матч обновлён"},
                    "409": {"description": "Счёт определяется голами"},
                    "422": {"description": "Ошибка валидации"}
                }
            }
        },
        "/matches/{matchID}/events": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Добавить событие матча",
                "parameters": [
                    {"type": "integer", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Событие добавлено"},
                    "409": {"description": "Повторная красная карточка"},
                    "422": {"description": "Ошибка валидации"}
                }
            }
        },
        "/backup": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["backup"],
                "summary": "Экспорт данных",
                "responses": {
                    "200": {"description": "Документ бэкапа"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "League System API",
	Description:      "Multi-tenant sports league management with live standings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
