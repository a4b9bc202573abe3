// Package docs registra la especificación swagger que sirve /swagger/*.
// Se mantiene a mano con el mismo formato que genera `swag init`.
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
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}
        },
        "/animals": {
            "get": {
                "tags": ["animals"], "summary": "Listar animales", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "name", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/animalResponse"}}}}
            },
            "post": {
                "tags": ["animals"], "summary": "Crear animal", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createAnimalRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/animalResponse"}}, "400": {"description": "invalid input"}}
            }
        },
        "/animals/{animalID}": {
            "get": {
                "tags": ["animals"], "summary": "Buscar animal por id", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "animalID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/animalResponse"}}, "404": {"description": "animal not found"}}
            }
        },
        "/animals/{animalID}/owners": {
            "post": {
                "tags": ["animals"], "summary": "Asociar dueño a un animal",
                "parameters": [
                    {"type": "string", "name": "animalID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/addOwnerRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "animal u owner no encontrado"}, "502": {"description": "directorio de dueños no disponible"}}
            }
        },
        "/animals/at/{index}/owners": {
            "post": {
                "tags": ["animals"], "summary": "Asociar dueño por posición",
                "parameters": [
                    {"type": "integer", "name": "index", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/addOwnerRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "animal u owner no encontrado"}, "502": {"description": "directorio de dueños no disponible"}}
            }
        },
        "/animals/by-name/{name}": {
            "get": {
                "tags": ["animals"], "summary": "Buscar animal por nombre",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/animalResponse"}}, "404": {"description": "animal not found"}}
            }
        },
        "/animals/by-name/{name}/owners": {
            "get": {
                "tags": ["animals"], "summary": "Dueños por nombre de animal",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/animals/by-name/{name}/vaccines": {
            "post": {
                "tags": ["animals"], "summary": "Aplicar vacuna",
                "parameters": [
                    {"type": "string", "name": "name", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/addVaccineRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/animalResponse"}}, "400": {"description": "volume_ml <= 0 o brand vacía"}, "404": {"description": "animal not found"}}
            }
        },
        "/imports/animals": {
            "post": {
                "tags": ["files"], "summary": "Cargar animales (agrega)",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/importResponse"}}, "502": {"description": "io error"}}
            }
        },
        "/imports/vaccines": {
            "post": {
                "tags": ["files"], "summary": "Cargar vacunas",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/importResponse"}}, "404": {"description": "animal not found"}}
            }
        },
        "/exports/animals": {
            "post": {
                "tags": ["files"], "summary": "Guardar animales",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/exports/vaccines": {
            "post": {
                "tags": ["files"], "summary": "Guardar vacunas",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/snapshots/save": {
            "post": {
                "tags": ["snapshots"], "summary": "Guardar registro en binario",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/snapshots/load": {
            "post": {
                "tags": ["snapshots"], "summary": "Cargar registro desde binario (reemplaza)",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/fileRequest"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "deserialization error"}}
            }
        },
        "/reports/expired-vaccines": {
            "get": {
                "tags": ["reports"], "summary": "Vacunas vencidas",
                "parameters": [{"type": "string", "name": "at", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/reportResponse"}}}
            }
        },
        "/reports/expired-vaccines/export": {
            "post": {
                "tags": ["reports"], "summary": "Escribir reporte a archivo",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/reportExportRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/reportResponse"}}}
            }
        },
        "/owners": {
            "get": {"tags": ["owners"], "summary": "Listar dueños", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["owners"], "summary": "Registrar dueño",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/registerOwnerRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "owner already exists"}}
            }
        },
        "/owners/{username}": {
            "get": {
                "tags": ["owners"], "summary": "Buscar dueño por username",
                "parameters": [{"type": "string", "name": "username", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "owner not found"}}
            }
        }
    },
    "definitions": {
        "createAnimalRequest": {"type": "object", "properties": {"name": {"type": "string"}, "age": {"type": "integer"}}},
        "addVaccineRequest": {"type": "object", "properties": {"volume_ml": {"type": "integer"}, "brand": {"type": "string"}}},
        "addOwnerRequest": {"type": "object", "properties": {"username": {"type": "string"}}},
        "registerOwnerRequest": {"type": "object", "properties": {"username": {"type": "string"}, "name": {"type": "string"}}},
        "fileRequest": {"type": "object", "properties": {"path": {"type": "string"}, "delimiter": {"type": "string"}}},
        "reportExportRequest": {"type": "object", "properties": {"path": {"type": "string"}, "at": {"type": "string"}}},
        "reportResponse": {"type": "object", "properties": {"at": {"type": "string"}, "lines": {"type": "array", "items": {"type": "string"}}}},
        "vaccineResponse": {
            "type": "object",
            "properties": {
                "volume_ml": {"type": "integer"}, "brand": {"type": "string"},
                "application_date": {"type": "string"}, "next_application_date": {"type": "string"},
                "expired": {"type": "boolean"}
            }
        },
        "animalResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}, "name": {"type": "string"}, "age": {"type": "integer"},
                "vaccines": {"type": "array", "items": {"$ref": "#/definitions/vaccineResponse"}},
                "owner_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "importResponse": {
            "type": "object",
            "properties": {
                "appended": {"type": "boolean"}, "loaded": {"type": "integer"}, "total": {"type": "integer"},
                "skipped": {"type": "array", "items": {"type": "object", "properties": {"line": {"type": "integer"}, "text": {"type": "string"}, "error": {"type": "string"}}}}
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
	Title:            "Animal Registry API",
	Description:      "Registro de animales, vacunas y dueños.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
