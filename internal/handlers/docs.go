package handlers

import (
	"encoding/json"
	"net/http"

	"weather-stats/internal/services"
)

type object = map[string]interface{}

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func jsonContent(description string, schema object) object {
	return object{
		"description": description,
		"content": object{
			"application/json": object{"schema": schema},
		},
	}
}

func errorResponse(description string) object {
	return jsonContent(description, ref("Error"))
}

func pathParam(name, description string, schema object) object {
	return object{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      schema,
	}
}

func queryParam(name, description string, def int) object {
	return object{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      object{"type": "integer", "default": def},
	}
}

var nullableNumber = object{"type": "number", "nullable": true}

func openAPIDocument() object {
	idParam := pathParam("id", "Report ID", object{"type": "integer", "format": "int64"})

	return object{
		"openapi": "3.0.0",
		"info": object{
			"title":       "Weather Stats API",
			"description": "Read-only queries over one weather station CSV dataset, plus stored report snapshots",
			"version":     "1.0.0",
		},
		"servers": []object{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": object{
			"/api/summary": object{
				"get": object{
					"summary":   "Dataset summary",
					"responses": object{"200": jsonContent("Record, skip and missing-value counts", ref("Summary"))},
				},
			},
			"/api/records": object{
				"get": object{
					"summary": "List records in file order",
					"parameters": []object{
						queryParam("page", "Page number", 1),
						queryParam("limit", "Records per page (max 1000)", 100),
					},
					"responses": object{
						"200": jsonContent("A page of records", object{
							"type": "object",
							"properties": object{
								"data":        object{"type": "array", "items": ref("Record")},
								"total":       object{"type": "integer"},
								"page":        object{"type": "integer"},
								"limit":       object{"type": "integer"},
								"total_pages": object{"type": "integer"},
							},
						}),
					},
				},
			},
			"/api/records/{index}": object{
				"get": object{
					"summary":    "Get one record by zero-based index",
					"parameters": []object{pathParam("index", "Zero-based record index", object{"type": "integer"})},
					"responses": object{
						"200": jsonContent("The record", object{
							"type": "object",
							"properties": object{
								"index":  object{"type": "integer"},
								"record": ref("Record"),
							},
						}),
						"400": errorResponse("Index is not an integer"),
						"404": errorResponse("Index out of range"),
					},
				},
			},
			"/api/extremes/{query}": object{
				"get": object{
					"summary": "Record with the highest or lowest value of a measurement",
					"parameters": []object{
						pathParam("query", "Extremum query", object{"type": "string", "enum": services.ExtremeQueries}),
					},
					"responses": object{
						"200": jsonContent("The winning record; ties go to the earliest", object{
							"type": "object",
							"properties": object{
								"query":  object{"type": "string"},
								"record": ref("Record"),
							},
						}),
						"400": errorResponse("Unknown query"),
						"404": errorResponse("No record has this measurement"),
					},
				},
			},
			"/api/insolation/{date}": object{
				"get": object{
					"summary":    "Solar energy received on a date",
					"parameters": []object{pathParam("date", "Calendar date (YYYY-MM-DD)", object{"type": "string", "format": "date"})},
					"responses": object{
						"200": jsonContent("Insolation in J/m²", ref("Insolation")),
						"400": errorResponse("Invalid date"),
						"404": errorResponse("Date not found in dataset"),
					},
				},
			},
			"/api/reports": object{
				"get": object{
					"summary": "List stored reports, newest first",
					"parameters": []object{
						queryParam("page", "Page number", 1),
						queryParam("limit", "Reports per page (max 1000)", 100),
					},
					"responses": object{
						"200": jsonContent("Stored reports without insolation", object{"type": "array", "items": ref("Report")}),
						"503": errorResponse("No report store configured"),
					},
				},
				"post": object{
					"summary": "Build a report from the dataset and store it",
					"requestBody": object{
						"required": true,
						"content": object{
							"application/json": object{
								"schema": object{
									"type":     "object",
									"required": []string{"name"},
									"properties": object{
										"name":  object{"type": "string"},
										"dates": object{"type": "array", "items": object{"type": "string", "format": "date"}},
									},
								},
							},
						},
					},
					"responses": object{
						"201": jsonContent("The stored report", ref("Report")),
						"400": errorResponse("Invalid body"),
						"503": errorResponse("No report store configured"),
					},
				},
			},
			"/api/reports/{id}": object{
				"get": object{
					"summary":    "Get a stored report",
					"parameters": []object{idParam},
					"responses": object{
						"200": jsonContent("The report", ref("Report")),
						"404": errorResponse("Report not found"),
					},
				},
				"delete": object{
					"summary":    "Delete a stored report",
					"parameters": []object{idParam},
					"responses": object{
						"204": object{"description": "Deleted"},
						"404": errorResponse("Report not found"),
					},
				},
			},
			"/health": object{
				"get": object{
					"summary":   "Health check",
					"responses": object{"200": jsonContent("API is healthy", object{"type": "object"})},
				},
			},
			"/metrics": object{
				"get": object{
					"summary": "Prometheus metrics",
					"responses": object{
						"200": object{
							"description": "Prometheus metrics in text format",
							"content":     object{"text/plain": object{"schema": object{"type": "string"}}},
						},
					},
				},
			},
		},
		"components": object{
			"schemas": object{
				"Record": object{
					"type": "object",
					"properties": object{
						"time":        object{"type": "string", "format": "date-time"},
						"wind_speed":  nullableNumber,
						"temperature": nullableNumber,
						"irradiance":  nullableNumber,
						"humidity":    nullableNumber,
					},
				},
				"Missing": object{
					"type": "object",
					"properties": object{
						"wind_speed":  object{"type": "integer"},
						"temperature": object{"type": "integer"},
						"irradiance":  object{"type": "integer"},
						"humidity":    object{"type": "integer"},
					},
				},
				"Summary": object{
					"type": "object",
					"properties": object{
						"source":            object{"type": "string"},
						"records":           object{"type": "integer"},
						"skipped":           object{"type": "integer"},
						"skipped_by_reason": object{"type": "object", "additionalProperties": object{"type": "integer"}},
						"missing":           ref("Missing"),
						"dates":             object{"type": "array", "items": object{"type": "string", "format": "date"}},
					},
				},
				"Insolation": object{
					"type": "object",
					"properties": object{
						"date":            object{"type": "string", "format": "date"},
						"energy_j_per_m2": object{"type": "number"},
						"hours":           object{"type": "integer"},
					},
				},
				"Extreme": object{
					"type":     "object",
					"nullable": true,
					"properties": object{
						"value": object{"type": "number"},
						"time":  object{"type": "string", "format": "date-time"},
					},
				},
				"Report": object{
					"type": "object",
					"properties": object{
						"id":              object{"type": "integer", "format": "int64"},
						"name":            object{"type": "string"},
						"source":          object{"type": "string"},
						"created_at":      object{"type": "string", "format": "date-time"},
						"records":         object{"type": "integer"},
						"skipped":         object{"type": "integer"},
						"missing":         ref("Missing"),
						"max_wind_speed":  ref("Extreme"),
						"min_temperature": ref("Extreme"),
						"max_temperature": ref("Extreme"),
						"min_humidity":    ref("Extreme"),
						"max_humidity":    ref("Extreme"),
						"insolation":      object{"type": "array", "items": ref("Insolation")},
					},
				},
				"Error": object{
					"type": "object",
					"properties": object{
						"error":   object{"type": "string"},
						"message": object{"type": "string"},
						"code":    object{"type": "integer"},
					},
				},
			},
		},
	}
}

// OpenAPISpec serves the OpenAPI 3.0 document for the API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openAPIDocument())
}
