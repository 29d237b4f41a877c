package server

import (
	"context"
	"fmt"
	"go/token"
	"reflect"
)

type methodType struct {
	method    reflect.Method
	withCtx   bool // Method(ctx, *Args, *Reply) rather than Method(*Args, *Reply)
	ArgType   reflect.Type
	ReplyType reflect.Type
}

type service struct {
	name   string
	rcvr   reflect.Value
	typ    reflect.Type
	method map[string]*methodType
}

// NewService 创建 service 并扫描所有合法方法
func NewService(rcvr any) (*service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("server: rcvr must be a pointer, got %v", typ)
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("server: rcvr must point to a struct, got %s", typ.Elem().Kind())
	}
	// 用类型名作为 service name
	srv := &service{
		name:   typ.Elem().Name(),
		rcvr:   reflect.ValueOf(rcvr),
		typ:    typ,
		method: make(map[string]*methodType),
	}
	srv.RegisterMethods()
	if len(srv.method) == 0 {
		return nil, fmt.Errorf("server: type %s has no exported methods of suitable type", srv.name)
	}
	return srv, nil
}

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// RegisterMethods 扫描 struct 的导出方法，过滤出符合签名的：
//
//	func (r *T) Method(args *Args, reply *Reply) error
//	func (r *T) Method(ctx context.Context, args *Args, reply *Reply) error
func (s *service) RegisterMethods() {
	for i := 0; i < s.typ.NumMethod(); i++ {
		method := s.typ.Method(i)
		mtype := method.Type
		if !token.IsExported(method.Name) || mtype.NumOut() != 1 || mtype.Out(0) != errorType {
			continue
		}

		first := 1
		withCtx := false
		switch {
		case mtype.NumIn() == 4 && mtype.In(1) == contextType:
			first, withCtx = 2, true
		case mtype.NumIn() != 3:
			continue
		}
		argType, replyType := mtype.In(first), mtype.In(first+1)
		if argType.Kind() != reflect.Ptr || replyType.Kind() != reflect.Ptr {
			continue
		}

		s.method[method.Name] = &methodType{
			method:    method,
			withCtx:   withCtx,
			ArgType:   argType.Elem(),
			ReplyType: replyType.Elem(),
		}
	}
}

// Call 通过反射调用方法
func (s *service) Call(ctx context.Context, mType *methodType, argv, replyv reflect.Value) error {
	args := []reflect.Value{s.rcvr, argv, replyv}
	if mType.withCtx {
		args = []reflect.Value{s.rcvr, reflect.ValueOf(ctx), argv, replyv}
	}
	results := mType.method.Func.Call(args)
	if !results[0].IsNil() {
		return results[0].Interface().(error)
	}
	return nil
}
