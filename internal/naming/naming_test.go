package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagToFile(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"User Mgmt!":       "user-mgmt",
		"Users":            "users",
		"  --Admin__Zone-": "admin-zone",
		"v2.Orders":        "v2-orders",
		"ÉTAT civil":       "tat-civil",
		"!!!":              DefaultTag,
		"":                 DefaultTag,
	}
	for in, want := range cases {
		assert.Equal(t, want, TagToFile(in), "tag %q", in)
	}
	assert.Equal(t, TagToFile("User Mgmt"), TagToFile("user-mgmt"), "punctuation-only differences collide")
}

func TestCamelAndPascal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, camel, pascal string
	}{
		{"getUsers", "getUsers", "GetUsers"},
		{"UsersController_findAll", "usersControllerFindAll", "UsersControllerFindAll"},
		{"get-user_byID", "getUserByID", "GetUserByID"},
		{"-leading sep", "leadingSep", "LeadingSep"},
		{"trailing--", "trailing", "Trailing"},
		{"Users", "users", "Users"},
		{"2fa verify", "_2faVerify", "_2faVerify"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.camel, Camel(tc.in), "camel %q", tc.in)
		assert.Equal(t, tc.pascal, Pascal(tc.in), "pascal %q", tc.in)
	}
}

func TestRefNameAndTypeName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "User", RefName("#/components/schemas/User"))
	assert.Equal(t, "User", RefName("User"))
	assert.Equal(t, "a_b", RefName("#/components/schemas/a~1b"))
	assert.Equal(t, "Page_User_", RefName("#/components/schemas/Page<User>"))
	assert.Equal(t, "Unknown", RefName("#/components/schemas/"))

	assert.Equal(t, "CreateUserDto", TypeName("CreateUserDto"))
	assert.Equal(t, "user_dto", TypeName("user.dto"))
	assert.Equal(t, "_1Thing", TypeName("1Thing"))
}

func TestPropertyKeyAndLiterals(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "id", PropertyKey("id"))
	assert.Equal(t, "$meta", PropertyKey("$meta"))
	assert.Equal(t, "'content-type'", PropertyKey("content-type"))
	assert.Equal(t, "'1st'", PropertyKey("1st"))

	assert.Equal(t, "queryArg.id", Accessor("queryArg", "id"))
	assert.Equal(t, "queryArg['filter[name]']", Accessor("queryArg", "filter[name]"))

	assert.Equal(t, `'it\'s'`, StringLiteral("it's"))
	assert.Equal(t, `'a\\b\nc'`, StringLiteral("a\\b\nc"))
}

func TestTemplateText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/users/{id}", TemplateText("/users/{id}"))
	assert.Equal(t, "/a\\`b", TemplateText("/a`b"))
	assert.Equal(t, "/cost/\\${x}", TemplateText("/cost/${x}"))
	assert.Equal(t, `/w\\in`, TemplateText(`/w\in`))
}

func TestDocText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", DocText("   "))
	assert.Equal(t, "multi line text", DocText("multi\n  line\ttext"))
	assert.Equal(t, `ends *\/ early`, DocText("ends */ early"))
}
