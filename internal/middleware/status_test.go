package middleware

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
)

func TestSpanStatus(t *testing.T) {
	tests := []struct {
		status   int
		wantCode codes.Code
		wantDesc string
	}{
		{100, codes.Ok, ""},
		{200, codes.Ok, ""},
		{204, codes.Ok, ""},
		{301, codes.Ok, ""},
		{399, codes.Ok, ""},
		{400, codes.Error, "InvalidArgument"},
		{401, codes.Error, "Unauthenticated"},
		{403, codes.Error, "PermissionDenied"},
		{404, codes.Error, "NotFound"},
		{418, codes.Error, "InvalidArgument"},
		{429, codes.Error, "ResourceExhausted"},
		{499, codes.Error, "InvalidArgument"},
		{500, codes.Error, "Internal"},
		{501, codes.Error, "Unimplemented"},
		{502, codes.Error, "Internal"},
		{503, codes.Error, "Unavailable"},
		{504, codes.Error, "DeadlineExceeded"},
		{599, codes.Error, "Internal"},
		{99, codes.Error, "Unknown"},
		{600, codes.Error, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			code, desc := spanStatus(tt.status)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}
