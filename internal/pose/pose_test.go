package pose

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("preserves unknown fields and their order", func(t *testing.T) {
		src := `[{"frame_id":1,"camera":"cam0","instances":[` +
			`{"bbox":[0,0,10,10],"keypoints":[[1,2,3]],"keypoint_scores":[0.9],"custom":{"a":1}}]}]`

		c, err := Parse([]byte(src))
		require.NoError(t, err)

		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, src, string(out))

		// Key order must survive, not just content.
		assert.Equal(t, src, string(out))
	})

	t.Run("instance_info wrapper mirrored on output", func(t *testing.T) {
		src := `{"meta_info":{"dataset":"test"},"instance_info":[{"frame_id":2,"instances":[]}]}`

		c, err := Parse([]byte(src))
		require.NoError(t, err)
		require.Len(t, c.Frames, 1)
		assert.Equal(t, 2, c.Frames[0].FrameID)

		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.Equal(t, src, string(out))
	})

	t.Run("injected track_id appended when absent", func(t *testing.T) {
		src := `[{"frame_id":1,"instances":[{"bbox":[0,0,1,1],"score":0.5}]}]`
		c, err := Parse([]byte(src))
		require.NoError(t, err)

		c.Frames[0].Instances[0].SetTrackID(7)
		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.Equal(t,
			`[{"frame_id":1,"instances":[{"bbox":[0,0,1,1],"score":0.5,"track_id":7}]}]`,
			string(out))
	})

	t.Run("existing track_id overwritten in place", func(t *testing.T) {
		src := `[{"frame_id":1,"instances":[{"track_id":3,"bbox":[0,0,1,1]}]}]`
		c, err := Parse([]byte(src))
		require.NoError(t, err)

		id, ok := c.Frames[0].Instances[0].TrackID()
		require.True(t, ok)
		assert.Equal(t, 3, id)

		c.Frames[0].Instances[0].SetTrackID(-1)
		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.Equal(t, `[{"frame_id":1,"instances":[{"track_id":-1,"bbox":[0,0,1,1]}]}]`, string(out))
	})

	t.Run("rejects unsupported root", func(t *testing.T) {
		_, err := Parse([]byte(`{"frames":[]}`))
		require.Error(t, err)
		_, err = Parse([]byte(`42`))
		require.Error(t, err)
	})
}

func TestFrameParsing(t *testing.T) {
	t.Parallel()

	t.Run("missing frame_id defaults to -1", func(t *testing.T) {
		c, err := Parse([]byte(`[{"instances":[]}]`))
		require.NoError(t, err)
		assert.Equal(t, -1, c.Frames[0].FrameID)
	})

	t.Run("float frame_id truncated", func(t *testing.T) {
		c, err := Parse([]byte(`[{"frame_id":3.0,"instances":[]}]`))
		require.NoError(t, err)
		assert.Equal(t, 3, c.Frames[0].FrameID)
	})

	t.Run("bbox usable only as a four-number array", func(t *testing.T) {
		c, err := Parse([]byte(`[{"frame_id":1,"instances":[` +
			`{"bbox":[0,0,10,10]},` +
			`{"bbox":[[0,0,10,10]]},` +
			`{"bbox":[1,2,3]},` +
			`{"score":1}]}]`))
		require.NoError(t, err)

		insts := c.Frames[0].Instances
		assert.Len(t, insts[0].Bbox, 4)
		assert.Nil(t, insts[1].Bbox, "nested bbox is not usable for matching")
		assert.Nil(t, insts[2].Bbox)
		assert.Nil(t, insts[3].Bbox)
	})
}

func TestCollectionClone(t *testing.T) {
	t.Parallel()

	src := `[{"frame_id":1,"instances":[{"bbox":[0,0,1,1]}]}]`
	c, err := Parse([]byte(src))
	require.NoError(t, err)

	cp := c.Clone()
	cp.Frames[0].Instances[0].SetTrackID(9)

	_, ok := c.Frames[0].Instances[0].TrackID()
	assert.False(t, ok, "clone must not alias the source instances")
}

func TestKeypoints(t *testing.T) {
	t.Parallel()

	t.Run("plain triples", func(t *testing.T) {
		c, err := Parse([]byte(`[{"frame_id":1,"instances":[{"keypoints":[[1,2,3],[4,5,6]]}]}]`))
		require.NoError(t, err)

		kps, err := c.Frames[0].Instances[0].Keypoints()
		require.NoError(t, err)
		require.Len(t, kps, 2)
		assert.Equal(t, [3]float64{4, 5, 6}, kps[1])
	})

	t.Run("one extra nesting unwrapped", func(t *testing.T) {
		c, err := Parse([]byte(`[{"frame_id":1,"instances":[{"keypoints":[[[1,2,3],[4,5,6]]]}]}]`))
		require.NoError(t, err)

		kps, err := c.Frames[0].Instances[0].Keypoints()
		require.NoError(t, err)
		assert.Len(t, kps, 2)
	})

	t.Run("short point rejected", func(t *testing.T) {
		c, err := Parse([]byte(`[{"frame_id":1,"instances":[{"keypoints":[[1,2]]}]}]`))
		require.NoError(t, err)

		_, err = c.Frames[0].Instances[0].Keypoints()
		require.Error(t, err)
	})

	t.Run("absent keypoints yields nil without error", func(t *testing.T) {
		c, err := Parse([]byte(`[{"frame_id":1,"instances":[{"bbox":[0,0,1,1]}]}]`))
		require.NoError(t, err)

		kps, err := c.Frames[0].Instances[0].Keypoints()
		require.NoError(t, err)
		assert.Nil(t, kps)
	})
}

func TestTrackIdentity(t *testing.T) {
	t.Parallel()

	parseInstance := func(t *testing.T, src string) *Instance {
		t.Helper()
		c, err := Parse([]byte(`[{"frame_id":1,"instances":[` + src + `]}]`))
		require.NoError(t, err)
		return c.Frames[0].Instances[0]
	}

	t.Run("track_id preferred", func(t *testing.T) {
		in := parseInstance(t, `{"track_id":5,"id":9}`)
		assert.Equal(t, 5, in.TrackIdentity(1))
	})

	t.Run("alternate keys accepted in order", func(t *testing.T) {
		assert.Equal(t, 4, parseInstance(t, `{"tracking_id":4}`).TrackIdentity(1))
		assert.Equal(t, 6, parseInstance(t, `{"id":6}`).TrackIdentity(1))
		assert.Equal(t, 8, parseInstance(t, `{"person_id":8}`).TrackIdentity(1))
	})

	t.Run("fallback when no identity present", func(t *testing.T) {
		assert.Equal(t, 2, parseInstance(t, `{"bbox":[0,0,1,1]}`).TrackIdentity(2))
	})

	t.Run("unparseable identity falls back without trying later keys", func(t *testing.T) {
		in := parseInstance(t, `{"tracking_id":"bogus","id":6}`)
		assert.Equal(t, 3, in.TrackIdentity(3))
	})

	t.Run("injected identity wins", func(t *testing.T) {
		in := parseInstance(t, `{"bbox":[0,0,1,1]}`)
		in.SetTrackID(11)
		assert.Equal(t, 11, in.TrackIdentity(1))
	})
}
