package entity_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logo_scanner/internal/feature/logodetection/domain"
	"logo_scanner/internal/feature/logodetection/domain/entity"
)

func TestBoundingPoly_CropRect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		vertices []entity.Vertex
		want     image.Rectangle
		wantErr  error
	}{
		{
			name:     "success: axis aligned rectangle",
			vertices: []entity.Vertex{{10, 10}, {50, 10}, {50, 40}, {10, 40}},
			want:     image.Rect(10, 10, 50, 40),
		},
		{
			name:     "success: origin at zero",
			vertices: []entity.Vertex{{0, 0}, {8, 0}, {8, 6}, {0, 6}},
			want:     image.Rect(0, 0, 8, 6),
		},
		{
			name:     "success: reversed corners are normalized",
			vertices: []entity.Vertex{{50, 40}, {10, 40}, {10, 10}, {50, 10}},
			want:     image.Rect(10, 10, 50, 40),
		},
		{
			name:     "error: three vertices",
			vertices: []entity.Vertex{{10, 10}, {50, 10}, {50, 40}},
			wantErr:  domain.ErrMalformedPolygon,
		},
		{
			name:    "error: no vertices",
			wantErr: domain.ErrMalformedPolygon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := entity.BoundingPoly{Vertices: tt.vertices}.CropRect()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoundingPoly_Points(t *testing.T) {
	t.Parallel()

	poly := entity.BoundingPoly{Vertices: []entity.Vertex{{1, 2}, {3, 4}}}

	assert.Equal(t, []image.Point{{1, 2}, {3, 4}}, poly.Points())
	assert.Empty(t, entity.BoundingPoly{}.Points())
}
