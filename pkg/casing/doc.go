// Package casing converts Solidity identifiers between the naming styles
// used in generated router sources.
//
//	ToConstantCase("MyToken")   // "MY_TOKEN"
//	ToConstantCase("USDToken")  // "USD_TOKEN"
//	ToLowerCamelCase("MyToken") // "myToken"
//	ToPascalCase("core router") // "CoreRouter"
//
// All functions are pure and return "" for empty input.
package casing
