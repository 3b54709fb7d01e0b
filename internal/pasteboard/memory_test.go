package pasteboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CopyBumpsChangeCount(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, 0, m.ChangeCount())

	m.Copy(NewItem(Text(TypePlainText, "a")), NewItem(Text(TypeHTML, "<b>b</b>"), Text(TypePlainText, "b")))
	assert.Equal(t, 1, m.ChangeCount())
	assert.Equal(t, []TypeID{TypePlainText, TypeHTML}, m.Types(), "union keeps first-seen order")

	items := m.Items()
	require.Len(t, items, 2)
	s, ok := items[1].String(TypePlainText)
	assert.True(t, ok)
	assert.Equal(t, "b", s)
}

func TestMemory_ClearWrite(t *testing.T) {
	m := NewMemory()
	m.Copy(NewItem(Text(TypePlainText, "old")))

	m.Clear()
	assert.Equal(t, 2, m.ChangeCount())
	assert.Empty(t, m.Items())

	require.NoError(t, m.Write(TypeRTF, []byte(`{\rtf1 x}`)))
	require.NoError(t, m.Write(TypePlainText, []byte("x")))
	require.NoError(t, m.WriteFiles([][]byte{[]byte("file:///a"), []byte("file:///b")}))
	assert.Equal(t, 2, m.ChangeCount(), "writes after a clear stay in the same generation")
	assert.Equal(t, 3, m.Writes())

	items := m.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []TypeID{TypeRTF, TypePlainText}, items[0].Types())
	assert.Equal(t, []byte("file:///b"), items[2].Data(TypeFileURL))
}

func TestMemoryItem_String(t *testing.T) {
	it := NewItem(Entry{Type: TypePNG, Data: []byte{0xff, 0xfe}}, Entry{Type: TypeProvenance})
	_, ok := it.String(TypePNG)
	assert.False(t, ok, "invalid UTF-8 is not text")
	_, ok = it.String(TypeProvenance)
	assert.False(t, ok)
	_, ok = it.String(TypeHTML)
	assert.False(t, ok)
	assert.Nil(t, it.Data(TypeHTML))
}

func TestTypeID(t *testing.T) {
	assert.True(t, TypeID("dyn.ah62d4rv4gu8y").IsDynamic())
	assert.True(t, TypeID("com.microsoft.ole.source.x").IsLinkedSource())
	assert.False(t, TypeMicrosoftLinkSource.IsLinkedSource())
	assert.True(t, TypeRTF.IsRichText())
	assert.True(t, TypeTIFF.IsImage())
	assert.Equal(t, []TypeID{"a", "b"}, ParseTypes([]string{" a ", "", "b"}))
	assert.Equal(t, []string{"public.rtf"}, Strings([]TypeID{TypeRTF}))
}
