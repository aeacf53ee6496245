package vdom

import "testing"

func TestNewElement_SkipsNilChildren(t *testing.T) {
	node := NewElement("div", nil, NewText("a"), nil, NewText("b"))
	if len(node.Kids) != 2 {
		t.Fatalf("expected 2 children, got %d", len(node.Kids))
	}
	if node.TextContent() != "ab" {
		t.Errorf("TextContent() = %q, want %q", node.TextContent(), "ab")
	}
}

func TestNewElement_KeyFromProps(t *testing.T) {
	node := NewElement("li", Props{"key": "p1"})
	if node.GetKey() != "p1" {
		t.Errorf("GetKey() = %q, want %q", node.GetKey(), "p1")
	}
}

func TestBuilder(t *testing.T) {
	clicked := false
	node := Div().
		ID("root").
		Class("a", "", "b").
		Class("c").
		Data("index", "3").
		OnClick(func() { clicked = true }).
		Children(
			Span().Text("hello").Build(),
			Input().Type("text").Placeholder("").Value("x").Build(),
		).
		Build()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"id", node.Attr("id"), "root"},
		{"class", node.Attr("class"), "a b c"},
		{"data", node.Attr("data-index"), "3"},
		{"text", node.TextContent(), "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if !node.HasClass("b") || node.HasClass("d") {
		t.Error("HasClass reported the wrong classes")
	}

	input := node.Find(func(n *VNode) bool { return n.Tag == "input" })
	if input == nil {
		t.Fatal("input not found")
	}
	if _, ok := input.Props["placeholder"]; ok {
		t.Error("empty placeholder should not be set")
	}

	h, ok := node.Handler("click").(func())
	if !ok {
		t.Fatal("onClick handler missing")
	}
	h()
	if !clicked {
		t.Error("handler did not run")
	}
}

func TestFindAll(t *testing.T) {
	node := Div().Children(
		Div().Class("opt").Build(),
		Div().Children(Div().Class("opt").Build()).Build(),
	).Build()

	found := node.FindAll(func(n *VNode) bool { return n.HasClass("opt") })
	if len(found) != 2 {
		t.Errorf("expected 2 matches, got %d", len(found))
	}
}

func TestIsEventProp(t *testing.T) {
	for key, want := range map[string]bool{"onClick": true, "on": false, "class": false, "onkeydown": true} {
		if got := IsEventProp(key); got != want {
			t.Errorf("IsEventProp(%q) = %v, want %v", key, got, want)
		}
	}
}
