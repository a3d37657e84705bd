package hud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/swipekeys/internal/gesture"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestFrame_Banner(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{
			name:  "no swipe yet",
			frame: Frame{At: t0},
			want:  "",
		},
		{
			name:  "fresh swipe",
			frame: Frame{At: t0.Add(100 * time.Millisecond), Last: gesture.Left, LastAt: t0},
			want:  "ACTION: LEFT",
		},
		{
			name:  "expired swipe",
			frame: Frame{At: t0.Add(BannerDuration), Last: gesture.Up, LastAt: t0},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.frame.Banner())
		})
	}
}

func TestFrame_ModeLabel(t *testing.T) {
	assert.Equal(t, "LIVE", Frame{Live: true}.ModeLabel())
	assert.Equal(t, "TEST", Frame{}.ModeLabel())
}

func TestIsQuitKey(t *testing.T) {
	assert.True(t, isQuitKey('q'))
	assert.True(t, isQuitKey('Q'))
	assert.True(t, isQuitKey(27))
	assert.False(t, isQuitKey(-1))
	assert.False(t, isQuitKey('x'))
}

func TestPublisher_FanOut(t *testing.T) {
	p := NewPublisher()
	a, cancelA := p.Subscribe()
	b, cancelB := p.Subscribe()
	defer cancelB()
	require.Equal(t, 2, p.Subscribers())

	f := Frame{At: t0, Armed: true, Fired: gesture.Right}
	p.publish([]byte{0xff, 0xd8}, f)

	assert.Equal(t, f, <-a)
	assert.Equal(t, f, <-b)

	data, latest, seq := p.Latest()
	assert.Equal(t, []byte{0xff, 0xd8}, data)
	assert.Equal(t, f, latest)
	assert.Equal(t, uint64(1), seq)

	cancelA()
	cancelA()
	_, ok := <-a
	assert.False(t, ok, "cancelled subscription is closed")
	assert.Equal(t, 1, p.Subscribers())
}

func TestPublisher_DropsForSlowSubscriber(t *testing.T) {
	p := NewPublisher()
	slow, cancel := p.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		p.publish(nil, Frame{At: t0.Add(time.Duration(i) * time.Millisecond)})
	}

	assert.Len(t, slow, subscriberBuffer)
	_, latest, seq := p.Latest()
	assert.Equal(t, uint64(subscriberBuffer+5), seq)
	assert.Equal(t, t0.Add(time.Duration(subscriberBuffer+4)*time.Millisecond), latest.At)
}

func TestPublisher_StateOnlyKeepsJPEG(t *testing.T) {
	p := NewPublisher()
	p.publish([]byte{1}, Frame{})
	p.publish(nil, Frame{Dwelling: true})

	data, f, _ := p.Latest()
	assert.Equal(t, []byte{1}, data)
	assert.True(t, f.Dwelling)
}

func TestPublisher_Close(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()
	p.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := p.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribing after Close yields a closed channel")

	p.publish([]byte{1}, Frame{})
	_, _, seq := p.Latest()
	assert.Zero(t, seq)
}

func TestDrawAndPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer mat.Close()

	f := Frame{
		At:            t0,
		Tip:           &gesture.Point{X: 0.25, Y: 0.5},
		NeutralRadius: gesture.DefaultNeutralRadius,
		Armed:         true,
		Last:          gesture.Left,
		LastAt:        t0,
		Live:          true,
		Enabled:       true,
		Width:         640,
		Height:        480,
	}
	Draw(&mat, f)

	tip := mat.GetVecbAt(240, 160)
	assert.Equal(t, uint8(255), tip[0], "tip marker drawn at (0.25, 0.5)")
	assert.Equal(t, uint8(255), tip[1])

	p := NewPublisher()
	require.NoError(t, p.Publish(&mat, f))
	data, _, _ := p.Latest()
	require.Greater(t, len(data), 2)
	assert.Equal(t, []byte{0xff, 0xd8}, data[:2], "JPEG magic")
}
