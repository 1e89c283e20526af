package utils

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/charmap"

	"flight-price-tracker/internal/domain/entity"
)

// ErrNoTextBody is returned when a message has neither a text/plain nor a text/html part
var ErrNoTextBody = errors.New("message has no text body")

// ParseRawMessage parses one RFC 5322 message. The body is the first text/plain part,
// or the first text/html part rendered as text when there is no plain part.
func ParseRawMessage(raw []byte, source string) (*entity.Message, error) {
	ent, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
		return nil, fmt.Errorf("read message: %w", err)
	}

	header := mail.Header{Header: ent.Header}
	msg := &entity.Message{
		Source: source,
		From:   header.Get("From"),
	}

	if id, err := header.MessageID(); err == nil && id != "" {
		msg.MessageID = id
	} else {
		sum := sha1.Sum(raw)
		msg.MessageID = hex.EncodeToString(sum[:])
	}

	if subject, err := header.Subject(); err == nil {
		msg.Subject = subject
	} else {
		msg.Subject = header.Get("Subject")
	}

	if date, err := header.Date(); err == nil {
		msg.Date = date
	}

	plain, html, err := collectBodies(ent)
	if err != nil {
		return nil, err
	}

	switch {
	case plain != nil:
		msg.Body, msg.Encoding = DecodeText(plain)
	case html != nil:
		text, encoding := DecodeText(html)
		msg.Body, msg.Encoding = HTMLToText(text), encoding
	default:
		return nil, ErrNoTextBody
	}

	return msg, nil
}

// DecodeText interprets body as UTF-8 and falls back to Latin-1 when it is not valid UTF-8
func DecodeText(body []byte) (string, string) {
	if utf8.Valid(body) {
		return string(body), entity.EncodingUTF8
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), ""), entity.EncodingUTF8
	}
	return string(decoded), entity.EncodingLatin1
}

func collectBodies(ent *message.Entity) (plain, html []byte, err error) {
	walkErr := ent.Walk(func(path []int, part *message.Entity, err error) error {
		if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
			return err
		}
		if part.MultipartReader() != nil {
			return nil
		}

		mediaType := "text/plain"
		if part.Header.Get("Content-Type") != "" {
			t, _, ctErr := part.Header.ContentType()
			if ctErr != nil {
				return nil
			}
			mediaType = strings.ToLower(t)
		}

		switch {
		case mediaType == "text/plain" && plain == nil:
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				return fmt.Errorf("read text/plain part: %w", readErr)
			}
			plain = body
		case mediaType == "text/html" && html == nil:
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				return fmt.Errorf("read text/html part: %w", readErr)
			}
			html = body
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("walk message parts: %w", walkErr)
	}
	return plain, html, nil
}
