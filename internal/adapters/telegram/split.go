package telegram

// MessageLimit — максимальная длина одного сообщения Telegram.
const MessageLimit = 4096

// PackBlocks склеивает текстовые блоки в сообщения, не превышающие
// limit рун. Блок никогда не разрывается; блок длиннее лимита уходит
// отдельным сообщением как есть.
func PackBlocks(blocks []string, limit int) []string {
	var out []string
	var current string
	currentLen := 0

	for _, block := range blocks {
		blockLen := len([]rune(block))
		if currentLen > 0 && currentLen+blockLen > limit {
			out = append(out, current)
			current = ""
			currentLen = 0
		}
		current += block
		currentLen += blockLen
	}
	if currentLen > 0 {
		out = append(out, current)
	}
	return out
}

// SplitMessage режет произвольный текст на части не длиннее limit рун.
// Используется для ответов, которые не разбиты на блоки заранее.
func SplitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var out []string
	for len(runes) > 0 {
		n := limit
		if n > len(runes) {
			n = len(runes)
		}
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return out
}
