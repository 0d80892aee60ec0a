package model

import "slices"

// ChildDescriptor identifies a resource linked from a collection.
type ChildDescriptor struct {
	Href          string
	ResourceTypes []string
	Interfaces    []string
	Bitmap        uint8
}

// Link returns the link object for the descriptor:
// {href, rt, if, p: {bm}}.
func (c ChildDescriptor) Link() Representation {
	policy := NewRepresentation()
	policy.SetInt(KeyBitmap, int64(c.Bitmap))

	link := NewRepresentation()
	link.SetString(KeyHref, c.Href)
	link.SetStringArray(KeyResourceTypes, c.ResourceTypes)
	link.SetStringArray(KeyInterfaces, c.Interfaces)
	link.SetObject(KeyPolicy, policy)
	return link
}

// Clone returns a deep copy.
func (c ChildDescriptor) Clone() ChildDescriptor {
	return ChildDescriptor{
		Href:          c.Href,
		ResourceTypes: slices.Clone(c.ResourceTypes),
		Interfaces:    slices.Clone(c.Interfaces),
		Bitmap:        c.Bitmap,
	}
}

// BloodPressureChild describes the blood pressure child resource.
func BloodPressureChild() ChildDescriptor {
	return ChildDescriptor{
		Href:          BloodPressureHref,
		ResourceTypes: []string{ResourceTypeBloodPressure},
		Interfaces:    []string{InterfaceSensor, InterfaceBaseline},
		Bitmap:        BitmapObservable,
	}
}

// PulseRateChild describes the pulse rate child resource.
func PulseRateChild() ChildDescriptor {
	return ChildDescriptor{
		Href:          PulseRateHref,
		ResourceTypes: []string{ResourceTypePulseRate},
		Interfaces:    []string{InterfaceSensor, InterfaceBaseline},
		Bitmap:        BitmapObservable,
	}
}

// AtomicMeasurementChildren returns the two fixed children in link order.
func AtomicMeasurementChildren() [2]ChildDescriptor {
	return [2]ChildDescriptor{BloodPressureChild(), PulseRateChild()}
}
