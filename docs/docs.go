// Package docs holds the OpenAPI document served under /docs.
//
// Regenerate with: swag init --parseDependency --parseInternal -g main.go
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
    "tags": [
        {
            "description": "API operations related to products",
            "name": "Products"
        }
    ],
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "summary": "API probe",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.HealthResponse"}
                    }
                }
            }
        },
        "/products": {
            "get": {
                "description": "Returns up to 10 products, most expensive first",
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Get a list of products",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.DataResponse-array_models_Product"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "post": {
                "description": "New products are always available",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Creates a new product",
                "parameters": [
                    {
                        "description": "Product data",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ProductRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/handlers.DataResponse-models_Product"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/validation.ErrorsResponse"}
                    }
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Get a product by ID",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.DataResponse-models_Product"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/validation.ErrorsResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Updates a product",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Product data",
                        "name": "product",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.ProductUpdateRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.DataResponse-models_Product"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/validation.ErrorsResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Deletes a product",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.DataResponse-string"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/validation.ErrorsResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            },
            "patch": {
                "produces": ["application/json"],
                "tags": ["Products"],
                "summary": "Toggles product availability",
                "parameters": [
                    {"type": "integer", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.DataResponse-models_Product"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/validation.ErrorsResponse"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.DataResponse-array_models_Product": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}},
                "ok": {"type": "boolean", "example": true}
            }
        },
        "handlers.DataResponse-models_Product": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/models.Product"},
                "ok": {"type": "boolean", "example": true}
            }
        },
        "handlers.DataResponse-string": {
            "type": "object",
            "properties": {
                "data": {"type": "string", "example": "Producto Eliminado"},
                "ok": {"type": "boolean", "example": true}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Producto no encontrado"},
                "ok": {"type": "boolean", "example": false}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "msg": {"type": "string", "example": "desde Api"}
            }
        },
        "handlers.ProductRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Monitor Curvo de 49 Pulgadas"},
                "price": {"type": "number", "example": 399}
            }
        },
        "handlers.ProductUpdateRequest": {
            "type": "object",
            "properties": {
                "availability": {"type": "boolean", "example": true},
                "name": {"type": "string", "example": "Monitor Curvo de 49 Pulgadas"},
                "price": {"type": "number", "example": 399}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "availability": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "updatedAt": {"type": "string"}
            }
        },
        "validation.ErrorsResponse": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/validation.FieldError"}},
                "ok": {"type": "boolean", "example": false}
            }
        },
        "validation.FieldError": {
            "type": "object",
            "properties": {
                "location": {"type": "string"},
                "msg": {"type": "string"},
                "path": {"type": "string"},
                "type": {"type": "string"},
                "value": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "REST API Products",
	Description:      "API Docs for Products",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
