package store

import (
	"net/http"
	"testing"
)

func TestByAuthorPreservesOrder(t *testing.T) {
	s := NewPostStore(newTestClient(t, http.NewServeMux()), &fakeSession{signedIn: true}, nil)
	s.col.replace([]Post{
		{ID: "1", AuthorID: "u1", Title: "first"},
		{ID: "2", AuthorID: "u2", Title: "other"},
		{ID: "3", AuthorID: "u1", Title: "second"},
	})

	got := s.ByAuthor("u1")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("ByAuthor returned %v", got)
	}
	if got := s.ByAuthor("nobody"); len(got) != 0 {
		t.Errorf("unknown author should return empty, got %v", got)
	}
}
