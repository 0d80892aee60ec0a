package resource

import (
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
)

// Identifier carried by the baseline representation.
const AtomicMeasurementID = "user_example_id"

// Builder produces the representation for a selector.
type Builder interface {
	Build(sel Selector) (model.Representation, error)
}

// AtomicMeasurementBuilder builds the blood pressure monitor collection.
type AtomicMeasurementBuilder struct {
	state    *State
	children [2]model.ChildDescriptor
}

// NewAtomicMeasurementBuilder creates a builder polling through state.
func NewAtomicMeasurementBuilder(state *State) *AtomicMeasurementBuilder {
	return &AtomicMeasurementBuilder{
		state:    state,
		children: model.AtomicMeasurementChildren(),
	}
}

// Build polls a fresh reading exactly once, then renders sel from it.
func (b *AtomicMeasurementBuilder) Build(sel Selector) (model.Representation, error) {
	reading := b.state.Refresh()
	return BuildWith(sel, reading, b.children)
}

// Render renders sel from the live reading without polling.
func (b *AtomicMeasurementBuilder) Render(sel Selector) (model.Representation, error) {
	return BuildWith(sel, b.state.Reading(), b.children)
}

// BuildWith renders sel from reading. It does not poll.
func BuildWith(sel Selector, reading sensor.Reading, children [2]model.ChildDescriptor) (model.Representation, error) {
	switch sel.Kind {
	case KindBaseline:
		return baseline(children), nil
	case KindBatch, KindDefault:
		return batch(reading, children), nil
	case KindLinkedList:
		return linkedList(children), nil
	default:
		if err := sel.Err(); err != nil {
			return model.Representation{}, err
		}
		return model.Representation{}, ErrInterfaceNotSupported
	}
}

func baseline(children [2]model.ChildDescriptor) model.Representation {
	r := model.NewRepresentation()
	r.SetStringArray(model.KeyResourceTypes, []string{
		model.ResourceTypeBloodPressureMonitorAM,
		model.ResourceTypeAtomicMeasurement,
	})
	r.SetStringArray(model.KeyInterfaces, []string{
		model.InterfaceBatch,
		model.InterfaceLinkedList,
		model.InterfaceBaseline,
	})
	r.SetStringArray(model.KeyMandatoryTypes, []string{model.ResourceTypeBloodPressure})
	r.SetStringArray(model.KeyRelatedTypes, []string{
		model.ResourceTypeBloodPressure,
		model.ResourceTypePulseRate,
	})
	r.SetString(model.KeyID, AtomicMeasurementID)
	r.SetObjectArray(model.KeyLinks, []model.Representation{
		children[0].Link(),
		children[1].Link(),
	})
	return r
}

func batch(reading sensor.Reading, children [2]model.ChildDescriptor) model.Representation {
	bp := model.NewRepresentation()
	bp.SetInt(model.KeySystolic, reading.Systolic)
	bp.SetInt(model.KeyDiastolic, reading.Diastolic)
	bp.SetString(model.KeyUnits, reading.Units)

	head := model.NewRepresentation()
	head.SetObject(model.KeyRep, bp)
	head.SetString(model.KeyHref, children[0].Href)

	pr := model.NewRepresentation()
	pr.SetInt(model.KeyPulseRate, reading.Pulse)

	pulse := model.NewRepresentation()
	pulse.SetObject(model.KeyRep, pr)
	pulse.SetString(model.KeyHref, children[1].Href)

	head.Append(pulse)
	return head
}

func linkedList(children [2]model.ChildDescriptor) model.Representation {
	head := children[0].Link()
	head.Append(children[1].Link())
	return head
}

// ForbiddenBuilder refuses every build.
type ForbiddenBuilder struct{}

// Build returns ErrForbidden.
func (ForbiddenBuilder) Build(Selector) (model.Representation, error) {
	return model.Representation{}, ErrForbidden
}
