package store

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctrlaltwill/Sprout-sub003/internal/domain"
)

const (
	fieldSeparator  = " | "
	optionSeparator = ";;"
)

// ParseBlocks splits card-file content into blank-line separated blocks
// and parses each into a card. Blocks that fail to parse are returned as
// errors alongside the cards, so a single bad block never loses the file.
func ParseBlocks(content string) ([]domain.Card, []error) {
	var (
		cards []domain.Card
		errs  []error
	)
	index := 0
	for _, block := range splitBlocks(content) {
		card, err := parseBlock(block)
		if err != nil {
			errs = append(errs, fmt.Errorf("block %d: %w", index, err))
			index++
			continue
		}
		card.Source.BlockIndex = index
		cards = append(cards, card)
		index++
	}
	return cards, errs
}

func splitBlocks(content string) []string {
	var blocks []string
	for _, chunk := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk != "" {
			blocks = append(blocks, chunk)
		}
	}
	return blocks
}

func parseBlock(block string) (domain.Card, error) {
	parts := strings.Split(block, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	cardType, err := domain.ParseCardType(parts[0])
	if err != nil {
		return domain.Card{}, err
	}

	card := domain.Card{Type: cardType}
	switch cardType {
	case domain.TypeBasic, domain.TypeBasicReversed, domain.TypeTypeIn:
		if len(parts) < 3 {
			return domain.Card{}, fmt.Errorf("%s block needs question and answer fields", cardType)
		}
		card.Question = parts[1]
		card.Answer = strings.Join(parts[2:], fieldSeparator)
	case domain.TypeCloze:
		if len(parts) < 2 || parts[1] == "" {
			return domain.Card{}, fmt.Errorf("cloze block needs a text field")
		}
		card.ClozeText = parts[1]
		if len(parts) > 2 {
			card.Explanation = strings.Join(parts[2:], fieldSeparator)
		}
	case domain.TypeChoice:
		if len(parts) < 4 {
			return domain.Card{}, fmt.Errorf("choice block needs stem, options and correct index")
		}
		card.Stem = parts[1]
		for _, option := range strings.Split(parts[2], optionSeparator) {
			card.Options = append(card.Options, strings.TrimSpace(option))
		}
		idx, err := strconv.Atoi(parts[3])
		if err != nil {
			return domain.Card{}, fmt.Errorf("choice correct index %q: %w", parts[3], err)
		}
		if idx < 1 || idx > len(card.Options) {
			return domain.Card{}, fmt.Errorf("choice correct index %d out of range for %d options", idx, len(card.Options))
		}
		card.CorrectIdx = idx
		if len(parts) > 4 {
			card.Explanation = strings.Join(parts[4:], fieldSeparator)
		}
	default:
		return domain.Card{}, fmt.Errorf("card type %s has no block form", cardType)
	}
	return card, nil
}

// FormatBlock renders a card back into its block form.
func FormatBlock(card domain.Card) (string, error) {
	switch card.Type {
	case domain.TypeBasic, domain.TypeBasicReversed, domain.TypeTypeIn:
		return card.Type.String() + fieldSeparator + sanitizeField(card.Question) +
			fieldSeparator + sanitizeField(card.Answer), nil
	case domain.TypeCloze:
		block := card.Type.String() + fieldSeparator + sanitizeField(card.ClozeText)
		if card.Explanation != "" {
			block += fieldSeparator + sanitizeField(card.Explanation)
		}
		return block, nil
	case domain.TypeChoice:
		options := make([]string, len(card.Options))
		for i, option := range card.Options {
			options[i] = sanitizeField(option)
		}
		block := card.Type.String() + fieldSeparator + sanitizeField(card.Stem) +
			fieldSeparator + strings.Join(options, optionSeparator) +
			fieldSeparator + strconv.Itoa(card.CorrectIdx)
		if card.Explanation != "" {
			block += fieldSeparator + sanitizeField(card.Explanation)
		}
		return block, nil
	default:
		return "", fmt.Errorf("card type %s has no block form", card.Type)
	}
}

// sanitizeField keeps field text on one logical line so the block stays
// parseable: newlines become <br>, bare pipes become slashes.
func sanitizeField(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "<br>")
	return strings.ReplaceAll(text, "|", "/")
}

// folderSegments derives the vault folder hierarchy of a file path
// relative to the vault root.
func folderSegments(root, path string) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	dir := filepath.Dir(rel)
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	return strings.Split(filepath.ToSlash(dir), "/")
}
