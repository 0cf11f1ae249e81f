package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_AppendTruncatesToWindow(t *testing.T) {
	store := NewStore(2)

	for i := 0; i < 5; i++ {
		store.Append("s1", Turn{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)})
	}

	turns := store.Get("s1")
	assert.Equal(t, []Turn{
		{Question: "q3", Answer: "a3"},
		{Question: "q4", Answer: "a4"},
	}, turns)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := NewStore(4)
	store.Append("s1", Turn{Question: "q", Answer: "a"})

	assert.Len(t, store.Get("s1"), 1)
	assert.Empty(t, store.Get("s2"))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(4)
	store.Append("s1", Turn{Question: "q", Answer: "a"})

	turns := store.Get("s1")
	turns[0].Answer = "mutated"

	assert.Equal(t, "a", store.Get("s1")[0].Answer)
}

func TestStore_ConcurrentAppendsStayBounded(t *testing.T) {
	store := NewStore(4)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append("s1", Turn{Question: fmt.Sprintf("q%d", i), Answer: "a"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Get("s1"), 4)
}

func TestRender(t *testing.T) {
	turns := []Turn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}

	want := "Pergunta: q1\nResposta: a1\nPergunta: q2\nResposta: a2"
	assert.Equal(t, want, Render(turns))
	assert.Equal(t, "", Render(nil))
}

func TestFromMessages_DropsDanglingQuestion(t *testing.T) {
	turns := FromMessages([]string{"q1", "a1", "q2"})
	assert.Equal(t, []Turn{{Question: "q1", Answer: "a1"}}, turns)
}
