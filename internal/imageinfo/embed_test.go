package imageinfo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"mediadocs/internal/apperror"
	"mediadocs/internal/storage"
	storeMocks "mediadocs/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedImage(t *testing.T) {
	ctx := context.Background()
	pngData := encodePNG(t, 200, 100)

	tests := []struct {
		name       string
		key        string
		setupMocks func(m *storeMocks.MockStorage)
		wantErr    error
		wantErrMsg string
		want       *EmbeddedImage
	}{
		{
			name: "png measured",
			key:  "documents/1-owner-abc.PNG",
			setupMocks: func(m *storeMocks.MockStorage) {
				m.On("Get", ctx, "documents/1-owner-abc.PNG").
					Return(io.NopCloser(bytes.NewReader(pngData)), storage.ObjectInfo{}, nil)
			},
			want: &EmbeddedImage{Width: 200, Height: 100, Data: pngData, Extension: ".png"},
		},
		{
			name: "unreadable jpeg falls back to square",
			key:  "documents/sig.jpeg",
			setupMocks: func(m *storeMocks.MockStorage) {
				m.On("Get", ctx, "documents/sig.jpeg").
					Return(io.NopCloser(bytes.NewReader([]byte("garbage"))), storage.ObjectInfo{}, nil)
			},
			want: &EmbeddedImage{Width: DefaultSide, Height: DefaultSide, Data: []byte("garbage"), Extension: ".jpg"},
		},
		{
			name:       "unsupported extension",
			key:        "documents/photo.webp",
			setupMocks: func(m *storeMocks.MockStorage) {},
			wantErr:    apperror.ErrUnsupportedSignatureOrPhotoFormat,
		},
		{
			name: "storage error",
			key:  "documents/photo.png",
			setupMocks: func(m *storeMocks.MockStorage) {
				m.On("Get", ctx, "documents/photo.png").
					Return(io.NopCloser(bytes.NewReader(nil)), storage.ObjectInfo{}, errors.New("boom"))
			},
			wantErrMsg: "read image documents/photo.png: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(storeMocks.MockStorage)
			tt.setupMocks(m)

			got, err := LoadEmbeddedImage(ctx, m, tt.key)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestFitWidth(t *testing.T) {
	tests := []struct {
		name  string
		img   EmbeddedImage
		width int
		wantH int
	}{
		{name: "landscape", img: EmbeddedImage{Width: 200, Height: 100}, width: 120, wantH: 60},
		{name: "portrait", img: EmbeddedImage{Width: 100, Height: 400}, width: 120, wantH: 480},
		{name: "square default", img: *NewEmbeddedImage(nil, ".png"), width: 150, wantH: 150},
		{name: "degenerate clamps", img: EmbeddedImage{Width: 1, Height: 100000}, width: 100, wantH: 10000},
		{name: "zero height", img: EmbeddedImage{Width: 10, Height: 0}, width: 50, wantH: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.img.FitWidth(tt.width)
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestDocxExtentEMU(t *testing.T) {
	cx, cy := DocxExtentEMU(96, 48)
	assert.Equal(t, int64(914400), cx)
	assert.Equal(t, int64(457200), cy)
}
