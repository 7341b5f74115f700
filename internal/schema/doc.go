// Package schema declares and enforces tool parameter shapes.
//
// A Schema is an ordered list of Fields. It serves two purposes: it
// validates and coerces the raw argument map of a call_tool request, and it
// renders itself as the JSON schema object clients see in list_tools.
//
//	params := schema.Object(
//		schema.String("uid", "Dashboard UID").Require(),
//		schema.Integer("limit", "Maximum results").WithDefault(100),
//	)
//	args, err := params.Validate(raw)
//
// Validation rules:
//
//   - a missing or null required field fails, naming the field
//   - unknown fields are ignored
//   - a type mismatch fails, naming the field and the expected type
//   - whole JSON numbers are accepted for integer fields
//   - absent optional fields receive their default
//
// Validated Args can be decoded into a typed record with Args.Decode, and
// Schema.Bind checks ahead of time that such a record can hold every field.
package schema
