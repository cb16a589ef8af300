package websocket

import (
	"fmt"
	"reflect"

	socketio "github.com/zishang520/socket.io/v2/socket"
)

type ackInvoker func(err error, payload map[string]any)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// extractAck splits a trailing acknowledgement callback off the event args.
func extractAck(datas []any) (ack ackInvoker, args []any) {
	if len(datas) == 0 {
		return nil, datas
	}
	ack = wrapAck(datas[len(datas)-1])
	if ack == nil {
		return nil, datas
	}
	return ack, datas[:len(datas)-1]
}

// wrapAck adapts any client callback. Error-typed parameters receive err, the
// first other parameter receives the payload, the rest get zero values.
func wrapAck(candidate any) ackInvoker {
	if candidate == nil {
		return nil
	}
	fn := reflect.ValueOf(candidate)
	if fn.Kind() != reflect.Func {
		return nil
	}
	typ := fn.Type()

	return func(err error, payload map[string]any) {
		args := make([]reflect.Value, typ.NumIn())
		payloadUsed := false
		for i := range args {
			in := typ.In(i)
			switch {
			case in == errorType:
				args[i] = ackValue(err, in)
			case !payloadUsed:
				payloadUsed = true
				if err != nil && typ.NumIn() == 1 {
					args[i] = ackValue(err, in)
				} else {
					args[i] = ackValue(payload, in)
				}
			default:
				args[i] = reflect.Zero(in)
			}
		}
		fn.Call(args)
	}
}

func ackValue(v any, target reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(target)
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(target):
		return rv
	case rv.Type().ConvertibleTo(target):
		return rv.Convert(target)
	case target.Kind() == reflect.String:
		return reflect.ValueOf(fmt.Sprint(v)).Convert(target)
	case target.Kind() == reflect.Slice && target.Elem().Kind() == reflect.Interface:
		// socket.io acks commonly take []any.
		return reflect.Append(reflect.MakeSlice(target, 0, 1), rv)
	}
	return reflect.Zero(target)
}

func respondWithAck(socket *socketio.Socket, ack ackInvoker, event string, payload map[string]any, ackErr error) {
	if ack != nil {
		ack(ackErr, payload)
	}
	if event != "" && payload != nil {
		_ = socket.Emit(event, payload)
	}
}
