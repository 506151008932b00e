package demo

//go:generate quickerrgen

// NotFound is returned when a lookup misses.
// quickerr! {
//     pub NotFound "resource not found"
// }

/*
quickerr! {
	pub Lookup "lookup failed"
	- NotFound
	- *fs.PathError
}

quickerr! { timeout `timed out {again}` }
*/

func lookup(name string) error {
	if name == "" {
		return LookupFromNotFound(NotFound{})
	}
	return timeout{}
}
