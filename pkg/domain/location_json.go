package domain

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Encode implements json.Marshaler.
func (l ResolvedLocation) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("originalLink")
	e.Str(l.OriginalLink)
	if l.FinalURL != "" {
		e.FieldStart("finalUrl")
		e.Str(l.FinalURL)
	}
	if l.Coordinates != nil {
		e.FieldStart("latitude")
		e.Float64(l.Coordinates.Latitude)
		e.FieldStart("longitude")
		e.Float64(l.Coordinates.Longitude)
	}
	if l.Error != "" {
		e.FieldStart("error")
		e.Str(l.Error)
	}
	e.ObjEnd()
}

// MarshalJSON implements stdjson.Marshaler.
func (l ResolvedLocation) MarshalJSON() ([]byte, error) {
	e := jx.Encoder{}
	l.Encode(&e)

	return e.Bytes(), nil
}

// Decode decodes ResolvedLocation from json. Absent and null fields stay
// absent; latitude and longitude must be present together.
func (l *ResolvedLocation) Decode(d *jx.Decoder) error {
	if l == nil {
		return errors.New("invalid: unable to decode ResolvedLocation to nil")
	}

	var (
		lat, lng *float64
		seenLink bool
	)
	if err := d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		if d.Next() == jx.Null {
			return d.Null()
		}

		switch string(k) {
		case "originalLink":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"originalLink\"")
			}
			l.OriginalLink = v
			seenLink = true
		case "finalUrl":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"finalUrl\"")
			}
			l.FinalURL = v
		case "latitude":
			v, err := d.Float64()
			if err != nil {
				return errors.Wrap(err, "decode field \"latitude\"")
			}
			lat = &v
		case "longitude":
			v, err := d.Float64()
			if err != nil {
				return errors.Wrap(err, "decode field \"longitude\"")
			}
			lng = &v
		case "error":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "decode field \"error\"")
			}
			l.Error = v
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return errors.Wrap(err, "decode ResolvedLocation")
	}

	if !seenLink {
		return errors.New("decode ResolvedLocation: field \"originalLink\" is required")
	}
	if (lat == nil) != (lng == nil) {
		return errors.New("decode ResolvedLocation: latitude and longitude must be set together")
	}
	if lat != nil {
		c := NewCoordinates(*lat, *lng)
		l.Coordinates = &c
	}

	return nil
}

// UnmarshalJSON implements stdjson.Unmarshaler.
func (l *ResolvedLocation) UnmarshalJSON(data []byte) error {
	return l.Decode(jx.DecodeBytes(data))
}

// EncodeLocations encodes locations as a JSON array. A nil slice encodes as [].
func EncodeLocations(locations []ResolvedLocation) []byte {
	e := jx.Encoder{}
	e.ArrStart()
	for i := range locations {
		locations[i].Encode(&e)
	}
	e.ArrEnd()

	return e.Bytes()
}

// DecodeLocations decodes a JSON array of locations, keeping their order.
func DecodeLocations(data []byte) ([]ResolvedLocation, error) {
	out := make([]ResolvedLocation, 0)
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var l ResolvedLocation
		if err := l.Decode(d); err != nil {
			return err
		}
		out = append(out, l)

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode locations")
	}

	return out, nil
}
