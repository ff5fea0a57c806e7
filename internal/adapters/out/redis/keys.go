package redis

// All keys are prefixed with "pizzaworkflow:" to share a database safely.
const keyPrefix = "pizzaworkflow:"

// stateKey returns the key for a state store entry: pizzaworkflow:state:{store}:{key}
func stateKey(storeName, key string) string {
	return keyPrefix + "state:" + storeName + ":" + key
}

// instanceKey returns the key for an instance snapshot: pizzaworkflow:instance:{id}
func instanceKey(id string) string { return keyPrefix + "instance:" + id }

// stateIndexKey returns the Set of instance ids currently in state.
func stateIndexKey(state string) string { return keyPrefix + "instances_by_state:" + state }
