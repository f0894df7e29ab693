package telegram

import (
	"strings"
	"testing"
)

func TestPackBlocks(t *testing.T) {
	b1 := strings.Repeat("a", 4000)
	b2 := strings.Repeat("b", 4000)
	b3 := strings.Repeat("c", 50)

	got := PackBlocks([]string{b1, b2, b3}, MessageLimit)
	if len(got) != 2 {
		t.Fatalf("ожидалось 2 сообщения, получено %d", len(got))
	}
	if got[0] != b1 {
		t.Fatal("первое сообщение должно содержать только первый блок")
	}
	if got[1] != b2+b3 {
		t.Fatal("второй и третий блоки должны склеиться")
	}
	if strings.Join(got, "") != b1+b2+b3 {
		t.Fatal("конкатенация сообщений должна совпадать с исходными блоками")
	}
}

func TestPackBlocksOversized(t *testing.T) {
	big := strings.Repeat("x", MessageLimit+100)
	got := PackBlocks([]string{"small", big, "tail"}, MessageLimit)
	if len(got) != 3 {
		t.Fatalf("ожидалось 3 сообщения, получено %d", len(got))
	}
	if got[1] != big {
		t.Fatal("блок длиннее лимита должен уйти отдельным сообщением как есть")
	}
}

func TestPackBlocksEmpty(t *testing.T) {
	if got := PackBlocks(nil, MessageLimit); got != nil {
		t.Fatalf("пустой вход: %v", got)
	}
}

func TestPackBlocksRunes(t *testing.T) {
	block := strings.Repeat("я", 2050)
	got := PackBlocks([]string{block, block}, MessageLimit)
	if len(got) != 2 {
		t.Fatalf("лимит должен считаться в рунах: получено %d сообщений", len(got))
	}
}

func TestSplitMessageShort(t *testing.T) {
	got := SplitMessage("hello", MessageLimit)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("SplitMessage = %v", got)
	}
}

func TestSplitMessageLong(t *testing.T) {
	text := strings.Repeat("й", MessageLimit+10)
	got := SplitMessage(text, MessageLimit)
	if len(got) != 2 {
		t.Fatalf("ожидалось 2 части, получено %d", len(got))
	}
	if strings.Join(got, "") != text {
		t.Fatal("части должны восстанавливать исходный текст")
	}
	if n := len([]rune(got[0])); n != MessageLimit {
		t.Fatalf("первая часть длиной %d рун", n)
	}
}
