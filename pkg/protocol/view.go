package protocol

// ViewUpdate is sent by the server after each navigation. It carries the
// matched view name, the canonical URL, the extracted route parameters,
// and whether the client should replace its current history entry.
type ViewUpdate struct {
	Name    string
	Path    string
	Query   string
	Params  map[string]string
	Replace bool
}

// EncodeViewUpdate encodes a ViewUpdate to bytes.
//
// Wire format: name, path, query (length-prefixed strings), replace flag,
// then a varint param count followed by key/value string pairs.
func EncodeViewUpdate(vu *ViewUpdate) []byte {
	e := NewEncoder()
	e.WriteString(vu.Name)
	e.WriteString(vu.Path)
	e.WriteString(vu.Query)
	e.WriteBool(vu.Replace)
	e.WriteUvarint(uint64(len(vu.Params)))
	for k, v := range vu.Params {
		e.WriteString(k)
		e.WriteString(v)
	}
	return e.Bytes()
}

// DecodeViewUpdate decodes a ViewUpdate from bytes.
func DecodeViewUpdate(data []byte) (*ViewUpdate, error) {
	d := NewDecoder(data)

	name, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	path, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	query, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	replace, err := d.ReadBool()
	if err != nil {
		return nil, err
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	var params map[string]string
	if count > 0 {
		params = make(map[string]string, count)
		for i := 0; i < count; i++ {
			k, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			v, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			params[k] = v
		}
	}

	return &ViewUpdate{
		Name:    name,
		Path:    path,
		Query:   query,
		Params:  params,
		Replace: replace,
	}, nil
}
