// Package tracing 提供基于OpenTelemetry的分布式追踪
//
// 核心概念：
// - Trace（追踪）：一个完整的请求链路,如一次借阅从HTTP入口到存储落库
// - Span（跨度）：一个操作单元,包含操作名、起止时间、状态
// - SpanContext：跨调用传递的TraceID/SpanID,用于构建调用树
//
// 本项目在每次存储往返外包一层Span(借阅Saga的每一步、目录检索),
// 请求变慢时在Jaeger UI里能直接看到慢在哪一步。
//
// 使用方式：
//
//	shutdown, err := tracing.InitTracer("unilib-api", "localhost:4317")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
//
//	func Borrow(ctx context.Context) error {
//	    ctx, span := tracing.StartSpan(ctx, "unilib-api", "Borrow")
//	    defer span.End()
//	    // ... 业务逻辑,下游调用传ctx自动成为子Span ...
//	}
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数：
//   - serviceName: 服务名称（在Jaeger UI中显示）
//   - collectorAddr: Collector的OTLP gRPC端点（如 localhost:4317）
//
// 设计要点：
// 1. 使用OTLP协议,厂商中立,未来可无缝切换后端
// 2. 采样策略：AlwaysSample适合开发环境,
//    生产环境建议TraceIDRatioBased(0.01)
// 3. BatchSpanProcessor批量发送,程序退出前必须调用shutdown刷新
func InitTracer(serviceName, collectorAddr string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(collectorAddr),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（资源属性,附加到所有Span便于筛选）
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider,业务代码直接用otel.Tracer()获取
	otel.SetTracerProvider(tp)

	// 5. 设置全局上下文传播器（W3C Trace Context + Baggage）
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	// 6. 返回关闭函数,确保最后一批Span被发送
	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个新的Span（便捷函数）
//
// Span命名用操作名（Borrow、SearchBooks）,动态值放属性,
// 必须用返回的ctx调用下游,否则无法构建调用树
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
