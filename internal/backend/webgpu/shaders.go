//go:build windows

package webgpu

// WGSL compute shaders. String constants instead of embed for simplicity.

// tileSize is the edge of the square tile each 16x16 workgroup computes.
const tileSize = 16

// matmulShader performs matrix multiplication: C = A @ B.
// A is [M, K], B is [K, N], C is [M, N]. Each workgroup stages one tile of A
// and one tile of B in workgroup memory per step along K.
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,  // rows of A and C
    K: u32,  // cols of A, rows of B
    N: u32,  // cols of B and C
}
@group(0) @binding(3) var<uniform> params: Params;

const TILE: u32 = 16u;

var<workgroup> tileA: array<f32, 256>;
var<workgroup> tileB: array<f32, 256>;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(local_invocation_id) local_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;
    let lr = local_id.y;
    let lc = local_id.x;

    var sum: f32 = 0.0;
    let numTiles = (params.K + TILE - 1u) / TILE;

    for (var t: u32 = 0u; t < numTiles; t = t + 1u) {
        let aCol = t * TILE + lc;
        if (row < params.M && aCol < params.K) {
            tileA[lr * TILE + lc] = a[row * params.K + aCol];
        } else {
            tileA[lr * TILE + lc] = 0.0;
        }

        let bRow = t * TILE + lr;
        if (bRow < params.K && col < params.N) {
            tileB[lr * TILE + lc] = b[bRow * params.N + col];
        } else {
            tileB[lr * TILE + lc] = 0.0;
        }

        workgroupBarrier();

        for (var k: u32 = 0u; k < TILE; k = k + 1u) {
            sum = sum + tileA[lr * TILE + k] * tileB[k * TILE + lc];
        }

        workgroupBarrier();
    }

    if (row < params.M && col < params.N) {
        result[row * params.N + col] = sum;
    }
}
`
