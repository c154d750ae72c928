package restaurants

import "testing"

func TestValidateUpsert(t *testing.T) {
	tests := []struct {
		name string
		body UpsertRequest
		want string
	}{
		{"valid", UpsertRequest{Name: "Thai Place", MenuLink: "https://thai.example.com/menu"}, ""},
		{"trims fields", UpsertRequest{Name: "  Thai Place  ", MenuLink: "  http://thai.example.com  "}, ""},
		{"missing name", UpsertRequest{Name: "   ", MenuLink: "https://thai.example.com"}, "name required"},
		{"missing menu link", UpsertRequest{Name: "Thai Place"}, "menu_link required"},
		{"blank menu link", UpsertRequest{Name: "Thai Place", MenuLink: "   "}, "menu_link required"},
		{"relative menu link", UpsertRequest{Name: "Thai Place", MenuLink: "/menu.pdf"}, "menu_link must be a valid http(s) URL"},
		{"wrong scheme", UpsertRequest{Name: "Thai Place", MenuLink: "ftp://thai.example.com"}, "menu_link must be a valid http(s) URL"},
		{"no host", UpsertRequest{Name: "Thai Place", MenuLink: "https://"}, "menu_link must be a valid http(s) URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateUpsert(&tt.body); got != tt.want {
				t.Errorf("validateUpsert = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateUpsertNormalizes(t *testing.T) {
	body := UpsertRequest{Name: "  Sushi Bar ", MenuLink: " https://sushi.example.com "}
	if msg := validateUpsert(&body); msg != "" {
		t.Fatalf("validateUpsert = %q", msg)
	}
	if body.Name != "Sushi Bar" {
		t.Errorf("name = %q, want trimmed", body.Name)
	}
	if body.MenuLink != "https://sushi.example.com" {
		t.Errorf("menu_link = %q, want trimmed", body.MenuLink)
	}
}
