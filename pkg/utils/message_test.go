package utils

import (
	"errors"
	"strings"
	"testing"

	"flight-price-tracker/internal/domain/entity"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestParseRawMessagePlain(t *testing.T) {
	raw := crlf(`From: Skyscanner <no-reply@skyscanner.net>
Subject: =?UTF-8?Q?Prezzi_aggiornati?=
Date: Thu, 16 Oct 2025 08:00:00 +0200
Message-ID: <alert-1@skyscanner.net>
Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

Da Zurigo a Lisbona
=E2=82=AC 331
`)

	msg, err := ParseRawMessage(raw, "mbox")
	if err != nil {
		t.Fatalf("ParseRawMessage() error = %v; want nil", err)
	}

	if msg.MessageID != "alert-1@skyscanner.net" {
		t.Fatalf("MessageID = %q; want alert-1@skyscanner.net", msg.MessageID)
	}
	if msg.Subject != "Prezzi aggiornati" {
		t.Fatalf("Subject = %q; want decoded subject", msg.Subject)
	}
	if got := msg.Date.Format(entity.ObservationDateLayout); got != "Thu, 16 Oct 2025" {
		t.Fatalf("Date = %q; want Thu, 16 Oct 2025", got)
	}
	if !strings.Contains(msg.Body, "€ 331") {
		t.Fatalf("Body = %q; want decoded euro sign", msg.Body)
	}
	if msg.Encoding != entity.EncodingUTF8 || msg.Source != "mbox" {
		t.Fatalf("Encoding, Source = %q, %q; want utf-8, mbox", msg.Encoding, msg.Source)
	}
}

func TestParseRawMessagePrefersPlainPart(t *testing.T) {
	raw := crlf(`From: no-reply@skyscanner.net
Subject: Price update
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/html; charset=utf-8

<p>html version</p>
--b1
Content-Type: text/plain; charset=utf-8

plain version
--b1--
`)

	msg, err := ParseRawMessage(raw, "gmail")
	if err != nil {
		t.Fatalf("ParseRawMessage() error = %v; want nil", err)
	}
	if strings.TrimSpace(msg.Body) != "plain version" {
		t.Fatalf("Body = %q; want the text/plain part", msg.Body)
	}
	if len(msg.MessageID) != 40 {
		t.Fatalf("MessageID = %q; want a sha1 hex digest without a Message-ID header", msg.MessageID)
	}
}

func TestParseRawMessageHTMLOnly(t *testing.T) {
	raw := crlf(`From: no-reply@skyscanner.net
Subject: Price update
Content-Type: text/html; charset=utf-8

<html><head><style>p { color: red }</style></head><body><p>Zurich to Lisbon</p><div>349 €</div>10:40 -<br>ZRH -</body></html>
`)

	msg, err := ParseRawMessage(raw, "imap")
	if err != nil {
		t.Fatalf("ParseRawMessage() error = %v; want nil", err)
	}

	want := "Zurich to Lisbon\n349 €\n10:40 -\nZRH -"
	if msg.Body != want {
		t.Fatalf("Body = %q; want %q", msg.Body, want)
	}
}

func TestParseRawMessageLatin1Fallback(t *testing.T) {
	raw := crlf("From: no-reply@skyscanner.net\nSubject: Prezzi\nContent-Type: text/plain\n\nIl prezzo \xe8 sceso\n")

	msg, err := ParseRawMessage(raw, "mbox")
	if err != nil {
		t.Fatalf("ParseRawMessage() error = %v; want nil", err)
	}
	if msg.Encoding != entity.EncodingLatin1 {
		t.Fatalf("Encoding = %q; want latin-1", msg.Encoding)
	}
	if !strings.Contains(msg.Body, "Il prezzo è sceso") {
		t.Fatalf("Body = %q; want Latin-1 decoded text", msg.Body)
	}
}

func TestParseRawMessageNoTextBody(t *testing.T) {
	raw := crlf(`From: no-reply@skyscanner.net
Content-Type: multipart/mixed; boundary="b1"

--b1
Content-Type: image/png
Content-Transfer-Encoding: base64

iVBORw0KGgo=
--b1--
`)

	if _, err := ParseRawMessage(raw, "mbox"); !errors.Is(err, ErrNoTextBody) {
		t.Fatalf("ParseRawMessage() error = %v; want ErrNoTextBody", err)
	}
}

func TestDecodeText(t *testing.T) {
	if got, enc := DecodeText([]byte("349 €")); got != "349 €" || enc != entity.EncodingUTF8 {
		t.Fatalf("DecodeText(utf-8) = %q, %q; want unchanged utf-8", got, enc)
	}
	if got, enc := DecodeText([]byte("Z\xfcrich")); got != "Zürich" || enc != entity.EncodingLatin1 {
		t.Fatalf("DecodeText(latin-1) = %q, %q; want Zürich, latin-1", got, enc)
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<table><tr><td>Thu, 23 Oct</td></tr><tr><td>10:40 -</td></tr></table><script>var x = 1;</script>`
	if got, want := HTMLToText(html), "Thu, 23 Oct\n10:40 -"; got != want {
		t.Fatalf("HTMLToText() = %q; want %q", got, want)
	}
}
