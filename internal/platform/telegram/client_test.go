package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("TOKEN")
	c.BaseURL = srv.URL
	return c
}

func TestSendPromptEncodesKeyboard(t *testing.T) {
	var got sendMessageReq
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		io.WriteString(w, `{"ok":true,"result":{"message_id":12,"chat":{"id":5},"text":"hi"}}`)
	})

	markup := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{{{Text: "1", CallbackData: "score_1"}}}}
	msg, err := c.SendPrompt(context.Background(), 5, "hi", markup)
	if err != nil {
		t.Fatalf("SendPrompt err: %v", err)
	}
	if msg.MessageID != 12 || msg.Chat.ID != 5 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if got.ChatID != 5 || got.ReplyMarkup == nil || got.ReplyMarkup.InlineKeyboard[0][0].CallbackData != "score_1" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestEditNotModifiedIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified"}`)
	})
	if err := c.EditMessageText(context.Background(), 1, 2, "same", nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestAPIErrorSurfacesDescription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
	})
	err := c.SendMessage(context.Background(), 1, "hello")
	if err == nil || !strings.Contains(err.Error(), "blocked by the user") {
		t.Fatalf("expected blocked error, got %v", err)
	}
}

func TestGetUpdatesDecodesResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req getUpdatesReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Offset != 100 || req.Timeout != 30 {
			t.Errorf("unexpected poll request %+v", req)
		}
		io.WriteString(w, `{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"chat":{"id":9},"text":"/start"}},
			{"update_id":101,"callback_query":{"id":"cb","from":{"id":9,"first_name":"A"},"message":{"message_id":2,"chat":{"id":9}},"data":"score_4"}}
		]}`)
	})

	updates, err := c.GetUpdates(context.Background(), 100, 30)
	if err != nil {
		t.Fatalf("GetUpdates err: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].ChatID() != 9 || updates[1].ChatID() != 9 {
		t.Fatalf("unexpected chat ids")
	}
	if updates[1].CallbackQuery.Data != "score_4" {
		t.Fatalf("unexpected callback data %q", updates[1].CallbackQuery.Data)
	}
}

func TestSendDocumentUploadsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("chat_id") != "77" {
			t.Errorf("unexpected chat_id %q", r.FormValue("chat_id"))
		}
		f, hdr, err := r.FormFile("document")
		if err != nil {
			t.Errorf("missing document: %v", err)
		} else {
			defer f.Close()
			data, _ := io.ReadAll(f)
			if hdr.Filename != "report.pdf" || string(data) != "%PDF" {
				t.Errorf("unexpected upload %s %q", hdr.Filename, data)
			}
		}
		io.WriteString(w, `{"ok":true,"result":{}}`)
	})
	if err := c.SendDocument(context.Background(), 77, []byte("%PDF"), "report.pdf"); err != nil {
		t.Fatalf("SendDocument err: %v", err)
	}
}
