package validate_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/oaspec/oaspec/specmodel"
	"github.com/oaspec/oaspec/validate"
)

func buildSwagger(t *testing.T, raw map[string]interface{}) *specmodel.Swagger {
	t.Helper()
	obj, err := specmodel.Construct(specmodel.SwaggerMeta(), raw, "file:///spec.json", specmodel.V2_0)
	assert.NilError(t, err)
	return obj.(*specmodel.Swagger)
}

func TestValidateFlagsMissingInfo(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"paths": map[string]interface{}{},
	})

	result := validate.Validate(swagger, specmodel.V2_0)
	assert.Assert(t, result.HasErrors())

	found := false
	for _, f := range result.Findings() {
		if f.Kind == validate.KindStructural {
			found = true
		}
	}
	assert.Assert(t, found)
}

func TestValidatePassesWithInfo(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info":  map[string]interface{}{"title": "t", "version": "1"},
		"paths": map[string]interface{}{},
	})

	result := validate.Validate(swagger, specmodel.V2_0)
	assert.Assert(t, !result.HasErrors())
	assert.NilError(t, result.Err())
}

func TestValidateFlagsBadFormatExample(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{
				"type":   "string",
				"format": "email",
				"example": "not-an-email",
			},
		},
	})

	result := validate.Validate(swagger, specmodel.V2_0)
	foundSemantic := false
	for _, f := range result.Findings() {
		if f.Kind == validate.KindSemantic {
			foundSemantic = true
		}
	}
	assert.Assert(t, foundSemantic)
}

func TestValidateFlagsDefaultOutsideDeclaredBounds(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Limit": map[string]interface{}{
				"type":    "integer",
				"maximum": float64(10),
				"default": float64(99),
			},
			"Code": map[string]interface{}{
				"type":      "string",
				"minLength": float64(4),
				"default":   "ab",
			},
		},
	})

	result := validate.Validate(swagger, specmodel.V2_0)
	semantic := 0
	for _, f := range result.Findings() {
		if f.Kind == validate.KindSemantic {
			semantic++
		}
	}
	assert.Equal(t, semantic, 2)
}

func TestValidateAllowsDefaultWithinBounds(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Limit": map[string]interface{}{
				"type":    "integer",
				"minimum": float64(1),
				"maximum": float64(10),
				"default": float64(5),
			},
		},
	})

	result := validate.Validate(swagger, specmodel.V2_0)
	assert.Assert(t, !result.HasErrors())
}

func TestValidateAllowsMatchingFormatExample(t *testing.T) {
	swagger := buildSwagger(t, map[string]interface{}{
		"info": map[string]interface{}{"title": "t", "version": "1"},
		"definitions": map[string]interface{}{
			"Pet": map[string]interface{}{
				"type":    "string",
				"format":  "email",
				"example": "person@example.com",
			},
		},
	})

	result := validate.Validate(swagger, specmodel.V2_0)
	for _, f := range result.Findings() {
		assert.Assert(t, f.Kind != validate.KindSemantic)
	}
}
