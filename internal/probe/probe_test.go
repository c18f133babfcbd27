package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mpeg2video",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "bit_rate": "8000000",
      "disposition": {"attached_pic": 0}
    },
    {
      "index": 1,
      "codec_name": "mp2",
      "codec_type": "audio",
      "bit_rate": "192000"
    }
  ],
  "format": {
    "filename": "recording.ts",
    "duration": "125.040000",
    "size": "131072000",
    "bit_rate": "8388608"
  }
}`

func TestParseJSON_FullSample(t *testing.T) {
	info, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	assert.InDelta(t, 125.04, info.Duration, 1e-9)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, "mpeg2video", info.VideoCodec)
	assert.Equal(t, int64(8000000), info.BitRate)
	assert.Equal(t, int64(131072000), info.Size)
}

func TestParseJSON_BitrateFallsBackToContainer(t *testing.T) {
	// Transport streams frequently omit the stream-level bit_rate.
	data := `{
	  "streams": [{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720}],
	  "format": {"duration": "60.0", "size": "1000", "bit_rate": "4000000"}
	}`
	info, err := ParseJSON([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, int64(4000000), info.BitRate)
}

func TestParseJSON_SkipsAttachedPictures(t *testing.T) {
	// Cover art is a video stream; it must not satisfy the video requirement.
	data := `{
	  "streams": [
	    {"codec_type": "video", "codec_name": "mjpeg", "width": 600, "height": 600,
	     "disposition": {"attached_pic": 1}},
	    {"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720}
	  ],
	  "format": {"duration": "60.0"}
	}`
	info, err := ParseJSON([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "h264", info.VideoCodec)
	assert.Equal(t, 1280, info.Width)
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "no video stream",
			data:    `{"streams": [{"codec_type": "audio", "codec_name": "aac"}], "format": {"duration": "60.0"}}`,
			wantErr: ErrNoVideoStream,
		},
		{
			name:    "audio only with cover art",
			data:    `{"streams": [{"codec_type": "video", "codec_name": "mjpeg", "disposition": {"attached_pic": 1}}], "format": {"duration": "60.0"}}`,
			wantErr: ErrNoVideoStream,
		},
		{
			name:    "zero duration",
			data:    `{"streams": [{"codec_type": "video", "codec_name": "h264"}], "format": {"duration": "0"}}`,
			wantErr: ErrNoDuration,
		},
		{
			name:    "unparseable duration",
			data:    `{"streams": [{"codec_type": "video", "codec_name": "h264"}], "format": {"duration": "N/A"}}`,
			wantErr: ErrNoDuration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{not json`))
		assert.Error(t, err)
	})
}

func TestMediaInfoHelpers(t *testing.T) {
	info := &MediaInfo{Width: 1920, Height: 1080}
	assert.Equal(t, 2073600, info.Pixels())
	assert.Equal(t, "1920x1080", info.Resolution())

	empty := &MediaInfo{}
	assert.Zero(t, empty.Pixels())
	assert.Equal(t, "unknown", empty.Resolution())
}
