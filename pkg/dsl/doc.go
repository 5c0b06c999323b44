/*
Package dsl provides a Go DSL for building wizard definitions in code.

It is an alternative to YAML/JSON definition files when wizards are generated
dynamically, written in tests, or simply preferred with compiler checks and
IDE completion.

Example usage:

	b := dsl.New()

	signup := b.Add("signup").Title("Sign up")

	signup.Step("account").
		Field("email").Type(domain.FieldEmail).Rules("required", "email")
	signup.Step("account").
		Field("plan").Select("free", "pro").Rules("required")

	signup.Step("billing").
		Field("card").Rules("required").ShowWhen("plan", domain.OpEquals, "pro")

	reg, err := b.Build()
	// ... pass reg to stitch.New("", stitch.WithSource(reg))
*/
package dsl
