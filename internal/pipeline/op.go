package pipeline

// Op identifies one API operation. Each Op owns a fixed stage list.
type Op int

// Operations.
const (
	ListTasks Op = iota + 1
	GetTask
	CreateTask
	UpdateTask
	DeleteTask
	Register
	Login
)

var opNames = map[Op]string{
	ListTasks:  "list_tasks",
	GetTask:    "get_task",
	CreateTask: "create_task",
	UpdateTask: "update_task",
	DeleteTask: "delete_task",
	Register:   "register",
	Login:      "login",
}

// String returns the snake_case name used in logs.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Mutating reports whether o writes tasks. Only mutating operations
// require a bearer token and invalidate the list cache.
func (o Op) Mutating() bool {
	switch o {
	case CreateTask, UpdateTask, DeleteTask:
		return true
	default:
		return false
	}
}
