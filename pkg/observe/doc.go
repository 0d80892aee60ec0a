// Package observe runs the periodic push loop behind CoAP observation of a
// resource.
//
// A Manager is either Idle or Active. The first Subscribe moves it to Active
// and starts one loop; further Subscribe calls while Active are no-ops. Each
// loop iteration waits one interval (2s by default), refreshes the resource's
// live reading and pushes it to every observer through the Notifier.
//
// The loop stops when Unsubscribe is called or when a push reports that no
// observers remain. In both cases the manager is Idle afterwards and a later
// Subscribe starts a fresh loop.
//
// # Locking
//
// The live reading and the Idle/Active status belong to the Target and are
// guarded by its single mutex. The Manager's own mutex only guards the loop
// handle and is never held while waiting for the loop to exit.
package observe
