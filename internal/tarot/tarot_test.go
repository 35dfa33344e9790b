package tarot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendlyName(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"RWS_Tarot_00_Fool.jpg", "Fool"},
		{"RWS_Tarot_21_World.jpg", "World"},
		{"cards/RWS_Tarot_13_Death.jpg", "Death"},
		{"Cups01.jpg", "Ace of Cups"},
		{"Wands10.jpg", "Ten of Wands"},
		{"Swords11.jpg", "Page of Swords"},
		{"Pents14.jpg", "King of Pentacles"},
		{"Pents03.jpg", "Three of Pentacles"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := FriendlyName(tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFriendlyName_Invalid(t *testing.T) {
	for _, file := range []string{"Cups15.jpg", "Cups00.jpg", "Cupsxx.jpg", "a.jpg"} {
		_, err := FriendlyName(file)
		assert.Error(t, err, file)
	}
}

func TestImageDataURI(t *testing.T) {
	assert.Equal(t, "data:image/jpg;base64,aGk=", ImageDataURI("Cups01.JPG", []byte("hi")))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Fool", "Three of Cups", "King of Pentacles", "Will I move?")

	assert.True(t, strings.HasPrefix(prompt, "\nYou are a skilled tarot reader."))
	assert.Contains(t, prompt, "Past Card: Fool [Describe the past card and its meaning]\n")
	assert.Contains(t, prompt, "Present Card: Three of Cups [Describe the present card and its meaning]\n")
	assert.Contains(t, prompt, "Future Card: King of Pentacles [Describe the future card and its meaning]\n")
	assert.True(t, strings.HasSuffix(prompt, "to give correct answer.\nWill I move?"))
}

func TestShuffler_Sample(t *testing.T) {
	s := NewShuffler(42)
	names := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}

	picked, err := s.Sample(names, 3)
	require.NoError(t, err)
	require.Len(t, picked, 3)

	seen := map[string]bool{}
	for _, p := range picked {
		assert.False(t, seen[p], "duplicate card %s", p)
		seen[p] = true
		assert.Contains(t, names, p)
	}

	_, err = s.Sample(names[:2], 3)
	assert.True(t, errors.Is(err, ErrNotEnoughCards))
}

type memoryDeck map[string][]byte

func (d memoryDeck) ListCards(ctx context.Context) ([]string, error) {
	var names []string
	for name := range d {
		names = append(names, name)
	}
	return names, nil
}

func (d memoryDeck) ReadCard(ctx context.Context, name string) ([]byte, error) {
	return d[name], nil
}

type recordingCompleter struct {
	model  string
	prompt string
	answer string
	err    error
}

func (c *recordingCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	c.model = model
	c.prompt = prompt
	return c.answer, c.err
}

func TestService_Read(t *testing.T) {
	deck := memoryDeck{
		"RWS_Tarot_00_Fool.jpg": []byte("fool"),
		"Cups02.jpg":            []byte("cups"),
		"Wands12.jpg":           []byte("wands"),
	}
	completer := &recordingCompleter{answer: "A journey begins."}

	service := NewService(deck, completer, NewShuffler(7), "", logrus.New())

	reading, err := service.Read(context.Background(), "What awaits me?")
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, completer.model)
	assert.Equal(t, "A journey begins.", reading.Text)
	require.Len(t, reading.Cards, 3)

	for i, card := range reading.Cards {
		assert.Equal(t, Positions[i], card.Position)
		assert.True(t, strings.HasPrefix(card.Image, "data:image/jpg;base64,"))
	}

	expected := BuildPrompt(reading.Cards[0].Name, reading.Cards[1].Name, reading.Cards[2].Name, "What awaits me?")
	assert.Equal(t, expected, completer.prompt)
}

func TestService_ReadNotEnoughCards(t *testing.T) {
	deck := memoryDeck{"Cups02.jpg": []byte("cups")}
	service := NewService(deck, &recordingCompleter{}, nil, "mistral-7b", logrus.New())

	_, err := service.Read(context.Background(), "?")
	assert.True(t, errors.Is(err, ErrNotEnoughCards))
}

func TestService_ReadCompletionError(t *testing.T) {
	deck := memoryDeck{
		"Cups01.jpg": nil, "Cups02.jpg": nil, "Cups03.jpg": nil,
	}
	service := NewService(deck, &recordingCompleter{err: errors.New("boom")}, nil, "", logrus.New())

	_, err := service.Read(context.Background(), "?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
