package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"mini-feign/charset"
	"mini-feign/codec"
	"mini-feign/encoder"
	"mini-feign/message"
	"mini-feign/template"
	"mini-feign/transport"

	"github.com/spf13/cobra"
)

const defaultInspectMsg = "Erlang/OTP 最初是爱立信为开发电信设备系统设计的编程语言平台，" +
	"电信设备(路由器、接入网关、…)典型设计是通过背板连接主控板卡与多块业务板卡的分布式系统。"

func newInspectCmd(a *app) *cobra.Command {
	var (
		id      int32
		msg     string
		showHex bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the bytes a protobuf request body turns into on the wire",
		Long: "Encodes a message with the configured charset and without one, runs both\n" +
			"through the HTTP adapter and reports whether the bytes still decode.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspect(cmd.Context(), cmd.OutOrStdout(), &message.Request{ID: id, Msg: msg}, a.cfg.Client.Charset, showHex)
		},
	}
	cmd.Flags().Int32Var(&id, "id", 1000000, "message id")
	cmd.Flags().StringVar(&msg, "msg", defaultInspectMsg, "message text")
	cmd.Flags().BoolVar(&showHex, "hex", false, "dump the bytes of every variant")
	return cmd
}

type wireVariant struct {
	name    string
	charset string
	body    []byte
}

func inspect(ctx context.Context, w io.Writer, req *message.Request, cs string, showHex bool) error {
	original, err := req.Marshal()
	if err != nil {
		return err
	}

	if cs == "" {
		cs = charset.UTF8
	}
	variants := []wireVariant{{name: "charset " + cs, charset: cs}, {name: "no charset"}}
	enc := encoder.New(encoder.WithCharset(cs))
	for i := range variants {
		tmpl := template.New().
			Method(http.MethodPost).
			Target("http://localhost").
			Path("/Echo/Say").
			Header("Content-Type", codec.MediaTypeProtobuf)
		if err := enc.Encode(req, tmpl); err != nil {
			return err
		}
		tmpl.Body(tmpl.BodyBytes(), variants[i].charset)

		snapshot, err := tmpl.Request()
		if err != nil {
			return err
		}
		hreq, err := transport.ToHTTPRequest(ctx, snapshot)
		if err != nil {
			return fmt.Errorf("%s: %w", variants[i].name, err)
		}
		body, err := io.ReadAll(hreq.Body)
		if err != nil {
			return err
		}
		variants[i].body = body
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tBYTES\tIDENTICAL\tDECODE")
	fmt.Fprintf(tw, "serialized\t%d\t-\t-\n", len(original))
	for _, v := range variants {
		decoded := &message.Request{}
		result := "ok"
		if err := decoded.Unmarshal(v.body); err != nil {
			result = err.Error()
		} else if !decoded.Equal(req) {
			result = "mismatch"
		}
		fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", v.name, len(v.body), bytes.Equal(v.body, original), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if showHex {
		fmt.Fprintf(w, "\nserialized:\n%s", hex.Dump(original))
		for _, v := range variants {
			fmt.Fprintf(w, "\n%s:\n%s", v.name, hex.Dump(v.body))
		}
	}
	return nil
}
